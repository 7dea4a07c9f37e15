package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/cloud"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/config"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/report"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/service"
)

func newCloudCheckCmd() *cobra.Command {
	var alert bool
	cmd := &cobra.Command{
		Use:   "cloud-check",
		Short: "Upload a sample report to S3, round-trip it through DynamoDB and optionally publish an SNS alert",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			run, err := sampleRun(ctx)
			if err != nil {
				return err
			}
			region := config.AWSRegion()

			if bucket := config.S3Bucket(); bucket != "" {
				if err := checkS3(ctx, out, region, bucket, run); err != nil {
					return err
				}
			}
			if table := config.RunsTable(); table != "" {
				if err := checkDynamo(ctx, out, region, table, run); err != nil {
					return err
				}
			}
			if arn := config.SNSTopicArn(); alert && arn != "" {
				snsc, err := cloud.NewSNSClient(ctx, region, arn)
				if err != nil {
					return err
				}
				if err := snsc.SendAlert(ctx, "Off-grid sizing cloud check", "Test message for run "+run.ID); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ SNS alert published to %s\n", arn)
			}
			fmt.Fprintln(out, "✓ cloud check finished")
			return nil
		},
	}
	cmd.Flags().BoolVar(&alert, "alert", false, "also publish a test message to the SNS topic")
	return cmd
}

// sampleRun sizes a small fixed load list against the configured catalog.
func sampleRun(ctx context.Context) (*domain.SizingRun, error) {
	cat, err := loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := config.SizingOptions()
	if err != nil {
		return nil, err
	}
	power := 100.0
	svcs := service.New(service.Deps{Defaults: config.DefaultParameters(), Options: opts})
	run, err := svcs.Sizing.Run(ctx, service.SizingRequest{
		Loads:   []domain.LoadEntry{{PowerW: &power, Quantity: 2, HoursPerDay: 5}},
		Catalog: cat,
	})
	if err != nil {
		return nil, err
	}
	run.ID = "cloud-check-" + uuid.NewString()
	return run, nil
}

func checkS3(ctx context.Context, out io.Writer, region, bucket string, run *domain.SizingRun) error {
	s3c, err := cloud.NewS3Client(ctx, region, bucket)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := report.Text(&buf, run); err != nil {
		return err
	}
	key := service.ReportKey(run)
	url, err := s3c.UploadReport(ctx, key, buf.Bytes(), "text/plain; charset=utf-8")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ uploaded s3://%s/%s\n  %s\n", bucket, key, url)

	data, err := s3c.Download(ctx, bucket, key)
	if err != nil {
		return err
	}
	if !bytes.Equal(data, buf.Bytes()) {
		return fmt.Errorf("s3: downloaded report differs from upload")
	}
	fmt.Fprintln(out, "✓ downloaded report matches")
	run.ReportURL = url
	return nil
}

func checkDynamo(ctx context.Context, out io.Writer, region, table string, run *domain.SizingRun) error {
	ddb, err := cloud.NewDynamoDBClient(ctx, region, table)
	if err != nil {
		return err
	}
	if err := ddb.SaveRun(ctx, run); err != nil {
		return err
	}
	got, err := ddb.GetRun(ctx, run.ID)
	if err != nil {
		return err
	}
	if got.ID != run.ID || len(got.Inverters) != len(run.Inverters) {
		return fmt.Errorf("dynamodb: stored run %s does not match", run.ID)
	}
	fmt.Fprintf(out, "✓ run %s stored in DynamoDB table %s\n", run.ID, table)
	return nil
}
