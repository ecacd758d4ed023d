package main

import (
	"github.com/spf13/cobra"

	"github.com/jonwraymond/fleetsync/admin"
)

func (a *app) shipmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shipments",
		Short: "Shipment commands",
	}

	var opts listOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List shipments",
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
			page, err := svc.Shipments.List(cmd.Context(), svc.Query, p)
			if err != nil {
				return err
			}
			return printPage(a, page, []string{"ID", "TRACKING", "HUB", "RIDER", "STATUS"}, func(s admin.Shipment) []string {
				rider := s.RiderID
				if rider == "" {
					rider = "-"
				}
				return []string{s.ID, s.TrackingNumber, s.HubID, rider, s.Status}
			})
		},
	}
	addListFlags(list, &opts)

	cmd.AddCommand(list)
	return cmd
}
