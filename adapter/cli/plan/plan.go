package plan

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/reelgate/adapter/cli"
	paymentsDomain "github.com/felixgeelhaar/reelgate/internal/payments/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

var grantTier string

// Cmd is the plan command group.
var Cmd = &cobra.Command{
	Use:   "plan",
	Short: "Inspect and grant plan tiers",
	Long:  `Inspect a user's plan and grant tiers manually.`,
}

var statusCmd = &cobra.Command{
	Use:   "status <user-id>",
	Short: "Show a user's plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Entitlements == nil {
			return cli.ErrNoDatabase
		}
		userID, err := sharedDomain.ParseUserID(args[0])
		if err != nil {
			return err
		}

		status, err := app.Entitlements.Status(cmd.Context(), userID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Tier:    %s\n", status.Tier)
		if status.ExpiresAt == nil {
			fmt.Fprintln(out, "Expires: never purchased")
			return nil
		}
		fmt.Fprintf(out, "Expires: %s\n", status.ExpiresAt.UTC().Format(time.RFC3339))
		if status.Active {
			fmt.Fprintf(out, "Left:    %s\n", status.Remaining.Truncate(time.Minute))
		} else {
			fmt.Fprintln(out, "Left:    expired")
		}
		return nil
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant <user-id>",
	Short: "Grant a paid tier",
	Long: `Grant a paid tier as if a purchase had succeeded. The plan window
restarts from now.

Examples:
  reelgate plan grant 1001 --tier pro
  reelgate plan grant 1001 --tier ultra`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Payments == nil {
			return cli.ErrNoDatabase
		}
		userID, err := sharedDomain.ParseUserID(args[0])
		if err != nil {
			return err
		}

		record, err := app.Payments.Apply(cmd.Context(), paymentsDomain.PurchaseSucceeded{
			UserID:  userID,
			Tier:    grantTier,
			Payload: "manual",
			PaidAt:  time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Granted %s to %s until %s\n",
			record.Tier, userID, record.ExpiresAt.UTC().Format(time.RFC3339))
		return nil
	},
}

func init() {
	grantCmd.Flags().StringVar(&grantTier, "tier", "pro", "tier to grant (pro or ultra)")
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(grantCmd)
}
