package main

import (
	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/report"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the equipment, inverter and battery catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			return report.Catalog(cmd.OutOrStdout(), cat)
		},
	}
}
