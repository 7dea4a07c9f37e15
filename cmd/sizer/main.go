package main

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/catalog"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/cloud"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/config"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
)

var catalogSource string

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	root := &cobra.Command{
		Use:           "sizer",
		Short:         "Size inverters and battery banks for an off-grid solar system",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.Load()
		},
	}
	root.PersistentFlags().StringVarP(&catalogSource, "catalog", "c", "", "catalog workbook: path, http(s) URL or s3://bucket/key (default $CATALOG_SOURCE)")
	root.AddCommand(newRunCmd(), newCatalogCmd(), newSubmitCmd(), newCloudCheckCmd())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("sizer failed")
	}
}

// loadCatalog resolves the --catalog flag. Without any source the catalog
// is empty and the sizing output says so.
func loadCatalog(ctx context.Context) (*domain.Catalog, error) {
	src := catalogSource
	if src == "" {
		src = config.CatalogSource()
	}
	if src == "" {
		log.Warn().Msg("no catalog source given")
		return &domain.Catalog{}, nil
	}

	var objects catalog.ObjectFetcher
	if strings.HasPrefix(src, "s3://") {
		s3c, err := cloud.NewS3Client(ctx, config.AWSRegion(), config.S3Bucket())
		if err != nil {
			return nil, err
		}
		objects = s3c
	}
	return catalog.NewLoader(objects).Load(ctx, src)
}
