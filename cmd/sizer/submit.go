package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/config"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/report"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/service"
)

// mqttResult is what the worker publishes on the result topic.
type mqttResult struct {
	RequestID string            `json:"request_id"`
	Run       *domain.SizingRun `json:"run"`
	Error     string            `json:"error"`
}

func newSubmitCmd() *cobra.Command {
	var (
		loads   string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send a load file to the MQTT worker and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(loads)
			if err != nil {
				return err
			}
			req, err := parseLoadFile(data)
			if err != nil {
				return fmt.Errorf("%s: %w", loads, err)
			}
			payload, requestID, err := requestPayload(req)
			if err != nil {
				return err
			}

			client := mqtt.NewClient(mqtt.NewClientOptions().
				AddBroker(config.MQTTBroker()).
				SetClientID("sizer-" + requestID[:8]))
			if token := client.Connect(); token.Wait() && token.Error() != nil {
				return token.Error()
			}
			defer client.Disconnect(250)

			results := make(chan mqttResult, 1)
			onResult := func(_ mqtt.Client, msg mqtt.Message) {
				var res mqttResult
				if json.Unmarshal(msg.Payload(), &res) == nil && res.RequestID == requestID {
					select {
					case results <- res:
					default:
					}
				}
			}
			if token := client.Subscribe(config.MQTTResultTopic(), 1, onResult); token.Wait() && token.Error() != nil {
				return token.Error()
			}
			if token := client.Publish(config.MQTTRequestTopic(), 1, false, payload); token.Wait() && token.Error() != nil {
				return token.Error()
			}

			select {
			case res := <-results:
				return printResult(cmd.OutOrStdout(), res)
			case <-time.After(timeout):
				return fmt.Errorf("no result for request %s within %s", requestID, timeout)
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
		},
	}
	cmd.Flags().StringVarP(&loads, "loads", "l", "", "load list file (YAML or JSON)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the worker")
	_ = cmd.MarkFlagRequired("loads")
	return cmd
}

// requestPayload tags req with a fresh request ID for correlating the reply.
func requestPayload(req service.SizingRequest) ([]byte, string, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(struct {
		RequestID string `json:"request_id"`
		service.SizingRequest
	}{id, req})
	return payload, id, err
}

func printResult(w io.Writer, res mqttResult) error {
	if res.Error != "" {
		return fmt.Errorf("worker: %s", res.Error)
	}
	if res.Run == nil {
		return fmt.Errorf("worker returned no run for request %s", res.RequestID)
	}
	return report.Table(w, res.Run)
}
