package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/N1femi/Thriva/internal/badge"
)

var rulesDomain string

func init() {
	rulesCmd.Flags().StringVar(&rulesDomain, "domain", "", "only print rules for this domain")
	rootCmd.AddCommand(rulesCmd)
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the badge rule table",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := selectRules(rulesDomain)
		if err != nil {
			return err
		}
		return printRules(cmd.OutOrStdout(), rules)
	},
}

// selectRules returns the whole table for an empty name, otherwise the rows
// of the named domain.
func selectRules(name string) ([]badge.Rule, error) {
	if name == "" {
		return badge.Rules, nil
	}
	domain, ok := badge.ParseDomain(name)
	if !ok {
		valid := make([]string, len(badge.Domains))
		for i, d := range badge.Domains {
			valid[i] = string(d)
		}
		return nil, fmt.Errorf("unknown domain %q (valid: %s)", name, strings.Join(valid, ", "))
	}
	return badge.RulesFor(domain), nil
}

func printRules(out io.Writer, rules []badge.Rule) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tBADGE\tMETRIC\tTHRESHOLD")
	for _, r := range rules {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.Domain, r.Badge, r.Metric, r.Threshold)
	}
	return w.Flush()
}
