package main

import (
	"github.com/spf13/cobra"

	"github.com/jonwraymond/fleetsync/auth"
	"github.com/jonwraymond/fleetsync/nav"
)

func (a *app) navCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Show the menu a role sees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			authz := auth.NewRBACAuthorizer(a.cfg.RBAC)
			items := nav.FilterWith(cmd.Context(), authz, role, nav.Menu())
			if a.output == outputJSON {
				return a.printJSON(items)
			}
			rows := make([][]string, len(items))
			for i, it := range items {
				rows[i] = []string{it.Section, it.Label, it.Path}
			}
			return writeTable(a.stdout, []string{"SECTION", "LABEL", "PATH"}, rows)
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "dashboard role, e.g. admin or hub_manager")
	return cmd
}
