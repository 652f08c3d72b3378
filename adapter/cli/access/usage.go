package access

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/reelgate/adapter/cli"
	accessDomain "github.com/felixgeelhaar/reelgate/internal/access/domain"
)

var usageCmd = &cobra.Command{
	Use:   "usage <user-id>",
	Short: "Show today's quota usage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Access == nil {
			return cli.ErrNoDatabase
		}
		userID, err := parseUser(args[0])
		if err != nil {
			return err
		}

		usage, err := app.Access.Usage(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), usage)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Tier:      %s\n", usage.Tier)
		fmt.Fprintf(out, "Day:       %s\n", usage.Day)
		fmt.Fprintf(out, "Consumed:  %d\n", usage.Consumed)
		if usage.Ceiling == accessDomain.Unlimited {
			fmt.Fprintln(out, "Remaining: unlimited")
		} else {
			fmt.Fprintf(out, "Remaining: %d of %d\n", usage.Remaining, usage.Ceiling)
		}
		return nil
	},
}
