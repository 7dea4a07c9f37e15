package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
)

// Text writes the plain-text report of a run: the demand figures, the load
// list, then the inverter and battery suggestions.
func Text(w io.Writer, run *domain.SizingRun) error {
	var b bytes.Buffer
	if run.ID != "" {
		fmt.Fprintf(&b, "Sizing run %s (%s)\n\n", run.ID, run.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	writeSummary(&b, run)

	if len(run.Loads) > 0 {
		b.WriteString("\nLoads\n")
		for i, l := range run.Loads {
			name := l.Name
			if name == "" {
				name = fmt.Sprintf("load %d", i+1)
			}
			fmt.Fprintf(&b, "  %dx %s, %g W, peak factor %g, %g h/day\n", l.Quantity, name, l.PowerW, l.PeakFactor, l.HoursPerDay)
		}
	}

	b.WriteString("\nInverter suggestions\n")
	for _, r := range run.Inverters {
		b.WriteString("  " + r.Text + "\n")
	}
	b.WriteString("\nBattery suggestions\n")
	for _, r := range run.Batteries {
		b.WriteString("  " + r.Text + "\n")
	}
	_, err := w.Write(b.Bytes())
	return err
}

func writeSummary(b *bytes.Buffer, run *domain.SizingRun) {
	fmt.Fprintf(b, "Adjusted daily energy: %.2f kWh\n", run.Summary.EnergyKWh)
	fmt.Fprintf(b, "Required continuous power: %.2f kW\n", run.Summary.ContinuousKW)
	fmt.Fprintf(b, "Required peak power: %.2f kW\n", run.Summary.PeakKW)
	fmt.Fprintf(b, "System: %g V, %g days autonomy, inverter policy %s, %g V per battery unit\n",
		run.Params.VoltageV, run.Params.AutonomyDays, run.Policy, run.UnitVoltage)
}

// Table writes the summary followed by one table row per recommendation.
func Table(w io.Writer, run *domain.SizingRun) error {
	var b bytes.Buffer
	writeSummary(&b, run)
	b.WriteString("\n")
	if _, err := w.Write(b.Bytes()); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Component", "Status", "Model", "Units", "Layout", "Suggestion"})
	table.SetAutoWrapText(false)
	appendRows(table, "inverter", run.Inverters)
	appendRows(table, "battery", run.Batteries)
	table.Render()
	return nil
}

func appendRows(table *tablewriter.Table, component string, recs []domain.Recommendation) {
	for _, r := range recs {
		units, layout := "-", "-"
		if r.Kind == domain.KindFeasible {
			units = fmt.Sprint(r.Quantity)
		}
		if r.Series > 0 {
			layout = fmt.Sprintf("%dS x %dP", r.Series, r.Parallel)
		}
		model := r.Model
		if model == "" {
			model = "-"
		}
		table.Append([]string{component, strings.ReplaceAll(string(r.Kind), "_", " "), model, units, layout, r.Text})
	}
}

// Catalog writes one table per catalog section plus any parameters the
// workbook's configuration sheet set.
func Catalog(w io.Writer, cat *domain.Catalog) error {
	section := func(title string, header []string, rows [][]string) error {
		if _, err := fmt.Fprintf(w, "%s (%d)\n", title, len(rows)); err != nil {
			return err
		}
		table := tablewriter.NewWriter(w)
		table.SetHeader(header)
		table.SetAutoWrapText(false)
		table.AppendBulk(rows)
		table.Render()
		_, err := io.WriteString(w, "\n")
		return err
	}

	var rows [][]string
	for _, e := range cat.Equipment {
		rows = append(rows, []string{e.Name, num(e.PowerW), num(e.PeakFactor)})
	}
	if err := section("Equipment", []string{"Model", "Power W", "Peak factor"}, rows); err != nil {
		return err
	}

	rows = nil
	for _, inv := range cat.Inverters {
		rows = append(rows, []string{inv.Name, num(inv.NominalKW), num(inv.PeakKW), fmt.Sprint(inv.MaxParallel)})
	}
	if err := section("Inverters", []string{"Model", "Nominal kW", "Peak kW", "Max parallel"}, rows); err != nil {
		return err
	}

	rows = nil
	for _, b := range cat.Batteries {
		rows = append(rows, []string{b.Name, num(b.DoDPct), num(b.EfficiencyPct), num(b.CapacityAh),
			fmt.Sprint(b.MaxSeries), fmt.Sprint(b.MaxParallel)})
	}
	if err := section("Batteries", []string{"Model", "DoD %", "Efficiency %", "Capacity Ah", "Max series", "Max parallel"}, rows); err != nil {
		return err
	}

	p := cat.Parameters
	rows = nil
	for _, kv := range []struct {
		name string
		v    *float64
	}{
		{"voltage_v", p.VoltageV},
		{"autonomy_days", p.AutonomyDays},
		{"simultaneity", p.Simultaneity},
		{"safety_margin", p.SafetyMargin},
		{"efficiency", p.Efficiency},
	} {
		if kv.v != nil {
			rows = append(rows, []string{kv.name, num(*kv.v)})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return section("Parameters", []string{"Parameter", "Value"}, rows)
}

func num(v float64) string { return fmt.Sprintf("%g", v) }
