package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/yegors/launchboard/internal/launches"
)

func newSitesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List launch sites in dataset order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.setup(cmd.Context(), cmd, nil)
			if err != nil {
				return err
			}
			dataset := a.service.Dataset()

			counts := make(map[string]int)
			for _, rec := range dataset.Records() {
				counts[rec.LaunchSite]++
			}

			t := newTable(cmd.OutOrStdout(), "#", "Launch Site", "Launches")
			t.SetColumnConfigs(alignRight(1, 3))
			for i, site := range dataset.Sites() {
				t.AppendRow(table.Row{i + 1, site, counts[site]})
			}
			t.AppendFooter(table.Row{"", "Total", dataset.Len()})
			t.Render()
			return nil
		},
	}
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var site string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the success summary for a site, or success counts per site for ALL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.setup(cmd.Context(), cmd, nil)
			if err != nil {
				return err
			}
			slices, err := a.service.SiteSuccessSummary(site)
			if err != nil {
				return err
			}

			header := "Outcome"
			if site == launches.AllSites {
				header = "Launch Site"
			}
			total := 0
			t := newTable(cmd.OutOrStdout(), header, "Count")
			t.SetColumnConfigs(alignRight(2))
			for _, s := range slices {
				t.AppendRow(table.Row{s.Label, s.Count})
				total += s.Count
			}
			t.AppendFooter(table.Row{"Total", total})
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&site, "site", launches.AllSites, "launch site, or ALL")
	return cmd
}

func newPayloadCmd(opts *rootOptions) *cobra.Command {
	var (
		site string
		low  float64
		high float64
	)

	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Print launches whose payload mass falls in [low, high]",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.setup(cmd.Context(), cmd, nil)
			if err != nil {
				return err
			}
			rng := launches.PayloadRange{Low: low, High: high}
			points, err := a.service.PayloadOutcomeFilter(site, rng)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "Payload Mass (kg)", "class", "Booster Version Category")
			t.SetColumnConfigs(alignRight(1, 2))
			for _, p := range points {
				t.AppendRow(table.Row{formatKg(p.PayloadMassKg), int(p.OutcomeClass), p.BoosterVersionCategory})
			}
			t.AppendFooter(table.Row{fmt.Sprintf("%d launches", len(points)), "", ""})
			t.Render()
			return nil
		},
	}

	bounds := launches.FixedPayloadBounds()
	cmd.Flags().StringVar(&site, "site", launches.AllSites, "launch site, or ALL")
	cmd.Flags().Float64Var(&low, "low", bounds.Low, "lower payload bound in kg (inclusive)")
	cmd.Flags().Float64Var(&high, "high", bounds.High, "upper payload bound in kg (inclusive)")
	return cmd
}
