package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/fleetsync/admin"
)

func (a *app) hubsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hubs",
		Short: "Hub commands",
	}

	var opts listOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List hubs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.params()
			if err != nil {
				return err
			}
			svc, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			page, err := svc.Hubs.List(cmd.Context(), svc.Query, p)
			if err != nil {
				return err
			}
			return printPage(a, page, []string{"ID", "NAME", "CODE", "CITY", "STATUS", "RIDERS"}, func(h admin.Hub) []string {
				return []string{h.ID, h.Name, h.Code, h.City, h.Status, strconv.Itoa(h.RiderCount)}
			})
		},
	}
	addListFlags(list, &opts)

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show hub counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			s, err := svc.Hubs.Stats(cmd.Context(), svc.Query)
			if err != nil {
				return err
			}
			return a.printFields(s, [][2]string{
				{"total", strconv.Itoa(s.Total)},
				{"active", strconv.Itoa(s.Active)},
				{"inactive", strconv.Itoa(s.Inactive)},
				{"riders", strconv.Itoa(s.TotalRiders)},
			})
		},
	}

	cmd.AddCommand(list, stats)
	return cmd
}
