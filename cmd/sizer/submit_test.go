package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
)

func TestPrintResultWithoutRun(t *testing.T) {
	var res mqttResult
	require.NoError(t, json.Unmarshal([]byte(`{"request_id":"req-1","error":""}`), &res))

	var buf bytes.Buffer
	err := printResult(&buf, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no run for request req-1")
	assert.Empty(t, buf.String())
}

func TestPrintResultWorkerError(t *testing.T) {
	var buf bytes.Buffer
	err := printResult(&buf, mqttResult{RequestID: "req-2", Error: "invalid parameter: voltage"})
	require.Error(t, err)
	assert.Equal(t, "worker: invalid parameter: voltage", err.Error())
	assert.Empty(t, buf.String())
}

func TestPrintResultRun(t *testing.T) {
	run := &domain.SizingRun{
		Params:      domain.SystemParameters{VoltageV: 24, AutonomyDays: 1},
		Policy:      "full-coverage",
		UnitVoltage: 12,
		Summary:     domain.DemandSummary{EnergyKWh: 2.5, ContinuousKW: 0.3, PeakKW: 0.9},
		Batteries: []domain.Recommendation{
			{Kind: domain.KindFeasible, Model: "LFP-100", Quantity: 2, Series: 2, Parallel: 1, Text: "2x LFP-100"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, mqttResult{RequestID: "req-3", Run: run}))
	assert.Contains(t, buf.String(), "Adjusted daily energy: 2.50 kWh")
	assert.Contains(t, buf.String(), "2S x 1P")
}
