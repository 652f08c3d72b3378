package access

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/reelgate/adapter/cli"
)

var checkCmd = &cobra.Command{
	Use:   "check <user-id> <token>",
	Short: "Run a token through the decision pipeline",
	Long: `Run a token through the full pipeline for a user. A granted play
consumes one unit of the user's daily quota, exactly as a live request would.

Examples:
  reelgate access check 1001 video_intro
  reelgate access check 1001 cap_season1_0 --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Access == nil {
			return cli.ErrNoDatabase
		}
		userID, err := parseUser(args[0])
		if err != nil {
			return err
		}

		decision, err := app.Access.Decide(cmd.Context(), userID, args[1])
		if err != nil {
			return fmt.Errorf("decision failed: %w", err)
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), decision)
		}
		printDecision(cmd.OutOrStdout(), decision)
		return nil
	},
}
