package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/catalog"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/sizing"
)

// CatalogStore persists the reference catalog.
type CatalogStore interface {
	LoadCatalog(ctx context.Context) (*domain.Catalog, error)
	ReplaceCatalog(ctx context.Context, cat *domain.Catalog) error
}

// RunStore persists sizing runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *domain.SizingRun) error
	GetRun(ctx context.Context, id string) (*domain.SizingRun, error)
}

type ReportUploader interface {
	UploadReport(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type Alerter interface {
	SendNoFitAlert(ctx context.Context, run *domain.SizingRun) error
}

// CatalogSource fetches and parses a catalog workbook from a location.
type CatalogSource interface {
	Load(ctx context.Context, source string) (*domain.Catalog, error)
}

// Deps collects what the services are built from. Only Catalogs is
// required; nil optional dependencies disable the matching feature.
type Deps struct {
	Catalogs CatalogStore
	Runs     RunStore
	Reports  ReportUploader
	Alerts   Alerter
	Sources  CatalogSource

	// AllowedSources lists the catalog locations API clients may import
	// from. An entry ending in "/" allows everything below it.
	AllowedSources []string

	Defaults domain.SystemParameters
	Options  sizing.Options
}

type Services struct {
	Catalog *CatalogService
	Sizing  *SizingService
}

func New(d Deps) *Services {
	return &Services{
		Catalog: &CatalogService{store: d.Catalogs, sources: d.Sources, allowed: d.AllowedSources, parse: catalog.ParseWorkbook},
		Sizing: &SizingService{
			catalogs: d.Catalogs,
			runs:     d.Runs,
			reports:  d.Reports,
			alerts:   d.Alerts,
			defaults: d.Defaults,
			opts:     d.Options,
			now:      func() time.Time { return time.Now().UTC() },
			newID:    uuid.NewString,
		},
	}
}

type workbookParser func(r io.Reader) (*domain.Catalog, error)
