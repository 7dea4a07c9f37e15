package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/report"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/sizing"
)

// SizingRequest is one sizing job. When Catalog is nil the stored catalog
// is used.
type SizingRequest struct {
	Loads       []domain.LoadEntry        `json:"loads" yaml:"loads"`
	Params      domain.ParameterOverrides `json:"params" yaml:"params"`
	Policy      string                    `json:"policy,omitempty" yaml:"policy,omitempty"`
	UnitVoltage float64                   `json:"unit_voltage,omitempty" yaml:"unit_voltage,omitempty"`
	Catalog     *domain.Catalog           `json:"catalog,omitempty" yaml:"-"`
}

type SizingService struct {
	catalogs CatalogStore
	runs     RunStore
	reports  ReportUploader
	alerts   Alerter
	defaults domain.SystemParameters
	opts     sizing.Options
	now      func() time.Time
	newID    func() string
}

// Run sizes one request. Parameters are layered: configured defaults, then
// the catalog's configuration sheet, then the request itself.
func (s *SizingService) Run(ctx context.Context, req SizingRequest) (*domain.SizingRun, error) {
	cat := req.Catalog
	if cat == nil {
		if s.catalogs == nil {
			cat = &domain.Catalog{}
		} else {
			var err error
			if cat, err = s.catalogs.LoadCatalog(ctx); err != nil {
				return nil, fmt.Errorf("load catalog: %w", err)
			}
		}
	}

	params := req.Params.Apply(cat.Parameters.Apply(s.defaults))
	opts, err := s.options(req)
	if err != nil {
		return nil, err
	}
	loads, err := ResolveLoads(req.Loads, cat.Equipment)
	if err != nil {
		return nil, err
	}
	res, err := sizing.Run(loads, params, cat.Inverters, cat.Batteries, opts)
	if err != nil {
		return nil, err
	}

	run := &domain.SizingRun{
		ID:          s.newID(),
		CreatedAt:   s.now(),
		Params:      params,
		Policy:      string(opts.InverterPolicy),
		UnitVoltage: opts.UnitVoltage,
		Loads:       loads,
		Summary:     res.Summary,
		Inverters:   res.Inverters,
		Batteries:   res.Batteries,
	}
	s.publishReport(ctx, run)

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
	}
	if s.alerts != nil && noFit(run) {
		if err := s.alerts.SendNoFitAlert(ctx, run); err != nil {
			log.Error().Err(err).Str("run_id", run.ID).Msg("no-fit alert failed")
		}
	}

	log.Info().
		Str("run_id", run.ID).
		Int("loads", len(loads)).
		Float64("energy_kwh", run.Summary.EnergyKWh).
		Float64("continuous_kw", run.Summary.ContinuousKW).
		Float64("peak_kw", run.Summary.PeakKW).
		Bool("inverter_fit", domain.Feasible(run.Inverters)).
		Bool("battery_fit", domain.Feasible(run.Batteries)).
		Msg("sizing run completed")
	return run, nil
}

func (s *SizingService) options(req SizingRequest) (sizing.Options, error) {
	opts := s.opts
	if req.Policy != "" {
		p, err := sizing.ParsePolicy(req.Policy)
		if err != nil {
			return opts, err
		}
		opts.InverterPolicy = p
	}
	if req.UnitVoltage != 0 {
		opts.UnitVoltage = req.UnitVoltage
	}
	if opts.InverterPolicy == "" {
		opts.InverterPolicy = sizing.PolicyFullCoverage
	}
	if opts.UnitVoltage == 0 {
		opts.UnitVoltage = sizing.DefaultUnitVoltage
	}
	return opts, nil
}

// publishReport uploads the text report. Failures are logged only; the run
// itself is still returned.
func (s *SizingService) publishReport(ctx context.Context, run *domain.SizingRun) {
	if s.reports == nil {
		return
	}
	var buf bytes.Buffer
	if err := report.Text(&buf, run); err != nil {
		log.Error().Err(err).Str("run_id", run.ID).Msg("render report")
		return
	}
	url, err := s.reports.UploadReport(ctx, ReportKey(run), buf.Bytes(), "text/plain; charset=utf-8")
	if err != nil {
		log.Error().Err(err).Str("run_id", run.ID).Msg("upload report")
		return
	}
	run.ReportURL = url
}

func ReportKey(run *domain.SizingRun) string {
	return fmt.Sprintf("runs/%s/%s.txt", run.CreatedAt.Format("2006/01/02"), run.ID)
}

// Get returns a stored run.
func (s *SizingService) Get(ctx context.Context, id string) (*domain.SizingRun, error) {
	if s.runs == nil {
		return nil, domain.ErrRunNotFound
	}
	return s.runs.GetRun(ctx, id)
}

// RunLister is implemented by run stores that can list recent runs.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]domain.SizingRun, error)
}

// Recent lists the latest runs, newest first. Stores that cannot list
// return an empty slice.
func (s *SizingService) Recent(ctx context.Context, limit int) ([]domain.SizingRun, error) {
	lister, ok := s.runs.(RunLister)
	if !ok {
		return []domain.SizingRun{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return lister.ListRuns(ctx, limit)
}

// noFit is true when a non-empty catalog yielded nothing usable.
func noFit(run *domain.SizingRun) bool {
	for _, recs := range [][]domain.Recommendation{run.Inverters, run.Batteries} {
		if len(recs) == 0 || recs[0].Kind == domain.KindEmptyCatalog {
			continue
		}
		if !domain.Feasible(recs) {
			return true
		}
	}
	return false
}

// FromMQTT handles a sizing request received on the request topic and
// returns the payload to publish on the result topic. A failed request still
// yields a payload describing the error.
func (s *SizingService) FromMQTT(ctx context.Context, topic string, payload []byte) ([]byte, error) {
	var req struct {
		RequestID string `json:"request_id"`
		SizingRequest
	}
	var resp struct {
		RequestID string            `json:"request_id,omitempty"`
		Topic     string            `json:"topic"`
		Run       *domain.SizingRun `json:"run,omitempty"`
		Error     string            `json:"error,omitempty"`
	}
	resp.Topic = topic

	err := json.Unmarshal(payload, &req)
	if err != nil {
		err = fmt.Errorf("%w: decode request: %v", sizing.ErrInvalidParameter, err)
	} else {
		resp.RequestID = req.RequestID
		resp.Run, err = s.Run(ctx, req.SizingRequest)
	}
	if err != nil {
		resp.Error = err.Error()
	}
	out, mErr := json.Marshal(resp)
	if mErr != nil {
		return nil, mErr
	}
	return out, err
}
