// Package bootstrap assembles the services shared by the API and the MQTT
// worker from configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/catalog"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/cloud"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/config"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/database"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/repository"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/service"
)

// Services connects to Postgres, runs migrations and, when cloud services
// are enabled, attaches S3, SNS and DynamoDB. The returned func closes the
// database.
func Services(ctx context.Context) (*service.Services, func(), error) {
	opts, err := config.SizingOptions()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Connect(config.DBDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("db connect: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db migrate: %w", err)
	}

	deps, err := Deps(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	deps.Options = opts
	return service.New(deps), func() { db.Close() }, nil
}

// Deps builds service dependencies around an open database.
func Deps(ctx context.Context, db *sqlx.DB) (service.Deps, error) {
	repos := repository.New(db)
	deps := service.Deps{
		Catalogs:       repos,
		Runs:           repos,
		Defaults:       config.DefaultParameters(),
		AllowedSources: config.CatalogAllowedSources(),
	}

	var objects catalog.ObjectFetcher
	if config.UseCloudServices() {
		region := config.AWSRegion()
		if bucket := config.S3Bucket(); bucket != "" {
			s3c, err := cloud.NewS3Client(ctx, region, bucket)
			if err != nil {
				return deps, fmt.Errorf("s3 client: %w", err)
			}
			objects = s3c
			deps.Reports = s3c
			deps.AllowedSources = append(deps.AllowedSources, "s3://"+bucket+"/catalogs/")
		}
		if arn := config.SNSTopicArn(); arn != "" {
			snsc, err := cloud.NewSNSClient(ctx, region, arn)
			if err != nil {
				return deps, fmt.Errorf("sns client: %w", err)
			}
			deps.Alerts = snsc
		}
		if table := config.RunsTable(); table != "" {
			ddb, err := cloud.NewDynamoDBClient(ctx, region, table)
			if err != nil {
				return deps, fmt.Errorf("dynamodb client: %w", err)
			}
			deps.Runs = ddb
		}
		log.Info().
			Str("region", region).
			Bool("reports", deps.Reports != nil).
			Bool("alerts", deps.Alerts != nil).
			Str("runs_table", config.RunsTable()).
			Msg("cloud services enabled")
	}
	deps.Sources = catalog.NewLoader(objects)
	return deps, nil
}

// ImportConfiguredCatalog loads CATALOG_SOURCE into the store when set.
// Failures are logged; the previously stored catalog stays in use.
func ImportConfiguredCatalog(ctx context.Context, svcs *service.Services) {
	src := config.CatalogSource()
	if src == "" {
		return
	}
	if _, err := svcs.Catalog.ImportFrom(ctx, src); err != nil {
		log.Warn().Err(err).Str("source", src).Msg("startup catalog import failed")
	}
}
