package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/config"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/report"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/service"
)

type runFlags struct {
	loads        string
	format       string
	policy       string
	unitVoltage  float64
	voltage      float64
	autonomy     float64
	simultaneity float64
	margin       float64
	efficiency   float64
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Size a system for the loads in a YAML or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(f.loads)
			if err != nil {
				return err
			}
			req, err := parseLoadFile(data)
			if err != nil {
				return fmt.Errorf("%s: %w", f.loads, err)
			}
			f.apply(cmd, &req)

			ctx := cmd.Context()
			if req.Catalog, err = loadCatalog(ctx); err != nil {
				return err
			}
			opts, err := config.SizingOptions()
			if err != nil {
				return err
			}
			svcs := service.New(service.Deps{Defaults: config.DefaultParameters(), Options: opts})
			run, err := svcs.Sizing.Run(ctx, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch f.format {
			case "text":
				return report.Text(out, run)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			default:
				return report.Table(out, run)
			}
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.loads, "loads", "l", "", "load list file (YAML or JSON)")
	fl.StringVarP(&f.format, "format", "o", "table", "output format: table, text or json")
	fl.StringVar(&f.policy, "policy", "", "inverter policy: full-coverage or quantity-only")
	fl.Float64Var(&f.unitVoltage, "unit-voltage", 0, "nominal voltage of one battery unit")
	fl.Float64Var(&f.voltage, "voltage", 0, "system voltage in V")
	fl.Float64Var(&f.autonomy, "autonomy", 0, "autonomy in days")
	fl.Float64Var(&f.simultaneity, "simultaneity", 0, "simultaneity factor (0-1)")
	fl.Float64Var(&f.margin, "margin", 0, "safety margin (>= 1)")
	fl.Float64Var(&f.efficiency, "efficiency", 0, "system efficiency (0-1]")
	_ = cmd.MarkFlagRequired("loads")
	return cmd
}

// apply copies explicitly set flags over the values read from the file.
func (f *runFlags) apply(cmd *cobra.Command, req *service.SizingRequest) {
	set := func(name string, v float64, dst **float64) {
		if cmd.Flags().Changed(name) {
			*dst = &v
		}
	}
	set("voltage", f.voltage, &req.Params.VoltageV)
	set("autonomy", f.autonomy, &req.Params.AutonomyDays)
	set("simultaneity", f.simultaneity, &req.Params.Simultaneity)
	set("margin", f.margin, &req.Params.SafetyMargin)
	set("efficiency", f.efficiency, &req.Params.Efficiency)
	if cmd.Flags().Changed("policy") {
		req.Policy = f.policy
	}
	if cmd.Flags().Changed("unit-voltage") {
		req.UnitVoltage = f.unitVoltage
	}
}

// parseLoadFile accepts either a bare list of load entries or a document
// with loads, params, policy and unit_voltage keys. JSON is valid YAML.
func parseLoadFile(data []byte) (service.SizingRequest, error) {
	var req service.SizingRequest
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return req, err
	}
	if len(doc.Content) == 0 {
		return req, fmt.Errorf("no loads found")
	}
	root := doc.Content[0]
	var err error
	if root.Kind == yaml.SequenceNode {
		err = root.Decode(&req.Loads)
	} else {
		err = root.Decode(&req)
	}
	if err != nil {
		return req, err
	}
	if len(req.Loads) == 0 {
		return req, fmt.Errorf("no loads found")
	}
	return req, nil
}
