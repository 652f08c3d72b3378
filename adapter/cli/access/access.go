package access

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	accessDomain "github.com/felixgeelhaar/reelgate/internal/access/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

var jsonOutput bool

// Cmd is the access command group.
var Cmd = &cobra.Command{
	Use:   "access",
	Short: "Resolve tokens and run access decisions",
	Long:  `Resolve access tokens and run them through the decision pipeline.`,
}

func init() {
	Cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	Cmd.AddCommand(resolveCmd)
	Cmd.AddCommand(checkCmd)
	Cmd.AddCommand(usageCmd)
}

func parseUser(arg string) (sharedDomain.UserID, error) {
	userID, err := sharedDomain.ParseUserID(arg)
	if err != nil {
		return 0, err
	}
	if userID.IsZero() {
		return 0, fmt.Errorf("user id must be non-zero")
	}
	return userID, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDecision(w io.Writer, d accessDomain.Decision) {
	fmt.Fprintf(w, "Outcome: %s\n", d.Outcome)
	if d.Tier != "" {
		fmt.Fprintf(w, "Tier:    %s\n", d.Tier)
	}
	switch d.Outcome {
	case accessDomain.OutcomeDenied:
		fmt.Fprintf(w, "Reason:  %s\n", d.Reason)
		for _, g := range d.MissingGroups {
			fmt.Fprintf(w, "  join:  %s\n", g)
		}
	case accessDomain.OutcomeGranted:
		g := d.Grant
		fmt.Fprintf(w, "Media:   %s\n", g.MediaRef)
		fmt.Fprintf(w, "Used:    %d today (%s)\n", g.ConsumedToday, g.Day)
		fmt.Fprintf(w, "Forward: %t\n", g.Forwardable)
		if g.Navigation != nil {
			if g.Navigation.Previous != nil {
				fmt.Fprintf(w, "Prev:    %s\n", g.Navigation.Previous.Token)
			}
			if g.Navigation.Next != nil {
				fmt.Fprintf(w, "Next:    %s\n", g.Navigation.Next.Token)
			}
		}
	case accessDomain.OutcomePreview:
		p := d.Preview
		if p.Title != "" {
			fmt.Fprintf(w, "Title:   %s\n", p.Title)
		}
		if p.PlayToken != "" {
			fmt.Fprintf(w, "Play:    %s\n", p.PlayToken)
		}
		for i, tok := range p.ChapterTokens {
			fmt.Fprintf(w, "  [%d]   %s\n", i, tok)
		}
	}
}
