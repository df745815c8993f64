package cli

import (
	"github.com/spf13/cobra"

	"github.com/Leenie/ansible-universe/internal/tui"
)

// AddRulesCommand adds the rules listing command.
func AddRulesCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(&cobra.Command{
		Use:   "rules",
		Short: "List the registered lint rules",
		Long: `List every registered rule with its group, subject kind, severity and
whether the current selection (config plus --enable/--disable) runs it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, inv, err := prepare(cmd, flags)
			if err != nil {
				return err
			}
			inv.out.Rules(tui.RuleRows(inv.rules.Rules(), selectionState(inv.ruleID)))
			return nil
		},
	})
}
