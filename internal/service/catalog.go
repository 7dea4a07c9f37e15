package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/catalog"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
)

var ErrNoCatalogSource = errors.New("no catalog source available")

type CatalogService struct {
	store   CatalogStore
	sources CatalogSource
	allowed []string
	parse   workbookParser
}

// Current returns the stored catalog.
func (s *CatalogService) Current(ctx context.Context) (*domain.Catalog, error) {
	return s.store.LoadCatalog(ctx)
}

// Import parses a workbook and replaces the stored catalog with it. A
// workbook that fails to parse leaves the stored catalog untouched.
func (s *CatalogService) Import(ctx context.Context, r io.Reader) (*domain.Catalog, error) {
	cat, err := s.parse(r)
	if err != nil {
		return nil, err
	}
	return cat, s.replace(ctx, cat, "upload")
}

// ImportRemote imports a source named by an API client. The source must be
// an http(s) or s3 location on the allowed list.
func (s *CatalogService) ImportRemote(ctx context.Context, source string) (*domain.Catalog, error) {
	if err := catalog.CheckRemoteSource(source, s.allowed); err != nil {
		log.Warn().Str("source", source).Msg("catalog import rejected")
		return nil, err
	}
	return s.ImportFrom(ctx, source)
}

// ImportFrom fetches a workbook from a path, URL or S3 location and stores
// it. The source is trusted; use ImportRemote for client input.
func (s *CatalogService) ImportFrom(ctx context.Context, source string) (*domain.Catalog, error) {
	if s.sources == nil {
		return nil, ErrNoCatalogSource
	}
	cat, err := s.sources.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	return cat, s.replace(ctx, cat, source)
}

func (s *CatalogService) replace(ctx context.Context, cat *domain.Catalog, origin string) error {
	if err := s.store.ReplaceCatalog(ctx, cat); err != nil {
		return fmt.Errorf("store catalog: %w", err)
	}
	log.Info().
		Str("origin", origin).
		Int("equipment", len(cat.Equipment)).
		Int("inverters", len(cat.Inverters)).
		Int("batteries", len(cat.Batteries)).
		Msg("catalog imported")
	return nil
}
