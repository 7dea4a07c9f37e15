package cloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient wraps AWS SNS client for sizing notifications
type SNSClient struct {
	svc      snsAPI
	topicArn string
}

// NewSNSClient creates a new SNS client instance
func NewSNSClient(ctx context.Context, region, topicArn string) (*SNSClient, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &SNSClient{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
	}, nil
}

// SendAlert publishes a message to the configured topic
func (c *SNSClient) SendAlert(ctx context.Context, subject, message string) error {
	result, err := c.svc.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	log.Info().Str("message_id", aws.ToString(result.MessageId)).Msg("alert sent")
	return nil
}

// SendNoFitAlert reports a run for which no inverter or no battery
// configuration could be found.
func (c *SNSClient) SendNoFitAlert(ctx context.Context, run *domain.SizingRun) error {
	subject, message := noFitMessage(run)
	return c.SendAlert(ctx, subject, message)
}

func noFitMessage(run *domain.SizingRun) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Sizing run %s found no feasible configuration\n\n", run.ID)
	fmt.Fprintf(&b, "Adjusted daily energy: %.2f kWh\n", run.Summary.EnergyKWh)
	fmt.Fprintf(&b, "Continuous power: %.2f kW\n", run.Summary.ContinuousKW)
	fmt.Fprintf(&b, "Peak power: %.2f kW\n", run.Summary.PeakKW)
	fmt.Fprintf(&b, "System voltage: %g V, autonomy: %g days\n\n", run.Params.VoltageV, run.Params.AutonomyDays)

	section := func(title string, recs []domain.Recommendation) {
		if domain.Feasible(recs) {
			return
		}
		b.WriteString(title + ":\n")
		for _, r := range recs {
			b.WriteString("  - " + r.Text + "\n")
		}
	}
	section("Inverters", run.Inverters)
	section("Batteries", run.Batteries)

	return fmt.Sprintf("Off-grid sizing: no fit for run %s", run.ID), b.String()
}
