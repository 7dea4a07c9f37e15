package sizing

import (
	"fmt"
	"strings"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
)

// EmptyInverterCatalogMessage is returned as the only recommendation when no
// inverter catalog rows were supplied.
const EmptyInverterCatalogMessage = "No inverter catalog provided; load a catalog to get inverter suggestions."

// MatchInverters proposes a unit count for every inverter model in catalog.
// Output order follows catalog order. When no model fits, a single no-fit
// recommendation carrying every rejection reason is returned instead.
func MatchInverters(catalog []domain.InverterModel, continuousKW, peakKW float64, opts Options) ([]domain.Recommendation, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if err := requireNonNegative("continuous_kw", continuousKW); err != nil {
		return nil, err
	}
	if err := requireNonNegative("peak_kw", peakKW); err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return []domain.Recommendation{{Kind: domain.KindEmptyCatalog, Text: EmptyInverterCatalogMessage}}, nil
	}

	recs := make([]domain.Recommendation, 0, len(catalog))
	feasible := 0
	for i, inv := range catalog {
		rec, err := matchInverter(i, inv, continuousKW, peakKW, opts.InverterPolicy)
		if err != nil {
			return nil, err
		}
		if rec.Kind == domain.KindFeasible {
			feasible++
		}
		recs = append(recs, rec)
	}
	if feasible > 0 {
		return recs, nil
	}

	reasons := make([]string, len(recs))
	for i, r := range recs {
		reasons[i] = r.Text
	}
	return []domain.Recommendation{{
		Kind: domain.KindNoFit,
		Text: fmt.Sprintf("No inverter model in the catalog covers %.2fkW continuous / %.2fkW peak: %s",
			continuousKW, peakKW, strings.Join(reasons, "; ")),
	}}, nil
}

func matchInverter(i int, inv domain.InverterModel, continuousKW, peakKW float64, policy InverterPolicy) (domain.Recommendation, error) {
	if err := requirePositive(fmt.Sprintf("inverters[%d].nominal_kw (%s)", i, inv.Name), inv.NominalKW); err != nil {
		return domain.Recommendation{}, err
	}
	if err := requireNonNegative(fmt.Sprintf("inverters[%d].peak_kw (%s)", i, inv.Name), inv.PeakKW); err != nil {
		return domain.Recommendation{}, err
	}

	qty := max(1, unitsFor(continuousKW, inv.NominalKW))
	rec := domain.Recommendation{Model: inv.Name, Quantity: qty}

	if qty > inv.MaxParallel || float64(qty)*inv.NominalKW < continuousKW {
		rec.Kind = domain.KindInfeasible
		rec.Text = fmt.Sprintf("%s (exceeds max parallel units of %d; requires %d)", inv.Name, inv.MaxParallel, qty)
		return rec, nil
	}

	if policy == PolicyFullCoverage {
		totalNominal := float64(qty) * inv.NominalKW
		totalPeak := float64(qty) * inv.PeakKW
		if totalNominal < continuousKW || totalPeak < peakKW {
			rec.Kind = domain.KindInfeasible
			rec.Text = fmt.Sprintf("%s (%d units give %.2fkW continuous / %.2fkW peak, below required %.2fkW / %.2fkW; max parallel units %d)",
				inv.Name, qty, totalNominal, totalPeak, continuousKW, peakKW, inv.MaxParallel)
			return rec, nil
		}
	}

	rec.Kind = domain.KindFeasible
	rec.Text = fmt.Sprintf("%dx %s (nominal %gkW, peak %gkW each)", qty, inv.Name, inv.NominalKW, inv.PeakKW)
	return rec, nil
}
