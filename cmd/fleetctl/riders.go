package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/fleetsync/admin"
)

var riderColumns = []string{"ID", "NAME", "HUB", "STATUS", "DELIVERIES"}

func riderRow(r admin.Rider) []string {
	return []string{r.ID, r.Name, r.HubID, r.Status, strconv.Itoa(r.Deliveries)}
}

func (a *app) ridersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "riders",
		Short: "Rider commands",
	}

	var (
		opts listOptions
		hub  string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List riders",
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
			if hub != "" {
				p = p.WithFilter("hubId", hub).WithPage(opts.page)
			}
			page, err := svc.Riders.List(cmd.Context(), svc.Query, p)
			if err != nil {
				return err
			}
			return printPage(a, page, riderColumns, riderRow)
		},
	}
	addListFlags(list, &opts)
	list.Flags().StringVar(&hub, "hub", "", "only riders of this hub")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one rider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			r, err := svc.Riders.Get(cmd.Context(), svc.Query, args[0])
			if err != nil {
				return err
			}
			return a.printRider(r)
		},
	}

	var reason string
	setStatus := &cobra.Command{
		Use:       "set-status ID STATUS",
		Short:     "Activate, deactivate or suspend a rider",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{admin.RiderActive, admin.RiderInactive, admin.RiderSuspended},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			r, err := svc.Riders.SetStatus().Do(cmd.Context(), svc.Query, admin.RiderStatusInput{
				ID:     args[0],
				Status: args[1],
				Reason: reason,
			})
			if err != nil {
				return err
			}
			return a.printRider(r)
		},
	}
	setStatus.Flags().StringVar(&reason, "reason", "", "reason recorded with the change")

	cmd.AddCommand(list, get, setStatus)
	return cmd
}

func (a *app) printRider(r admin.Rider) error {
	return a.printFields(r, [][2]string{
		{"id", r.ID},
		{"name", r.Name},
		{"email", r.Email},
		{"phone", r.Phone},
		{"hub", r.HubID},
		{"status", r.Status},
		{"deliveries", strconv.Itoa(r.Deliveries)},
	})
}
