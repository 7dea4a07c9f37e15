package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoadFileList(t *testing.T) {
	req, err := parseLoadFile([]byte(`
- model: Geladeira
  quantity: 2
  hours_per_day: 24
- power_w: 60
  peak_factor: 1.5
  hours_per_day: 4
`))
	require.NoError(t, err)
	require.Len(t, req.Loads, 2)
	assert.Equal(t, "Geladeira", req.Loads[0].Model)
	assert.Equal(t, 2, req.Loads[0].Quantity)
	require.NotNil(t, req.Loads[1].PowerW)
	assert.Equal(t, 60.0, *req.Loads[1].PowerW)
	assert.Equal(t, 1.5, *req.Loads[1].PeakFactor)
}

func TestParseLoadFileDocument(t *testing.T) {
	req, err := parseLoadFile([]byte(`{
  "policy": "qty",
  "unit_voltage": 6,
  "params": {"voltage_v": 24, "autonomy_days": 1},
  "loads": [{"model": "TV", "hours_per_day": 5}]
}`))
	require.NoError(t, err)
	assert.Equal(t, "qty", req.Policy)
	assert.Equal(t, 6.0, req.UnitVoltage)
	require.NotNil(t, req.Params.VoltageV)
	assert.Equal(t, 24.0, *req.Params.VoltageV)
	assert.Nil(t, req.Params.Efficiency)
	require.Len(t, req.Loads, 1)
	assert.Equal(t, 5.0, req.Loads[0].HoursPerDay)
}

func TestParseLoadFileErrors(t *testing.T) {
	_, err := parseLoadFile([]byte(""))
	assert.Error(t, err)
	_, err = parseLoadFile([]byte("params:\n  voltage_v: 24\n"))
	assert.Error(t, err)
	_, err = parseLoadFile([]byte("- [unclosed"))
	assert.Error(t, err)
}

func TestRunFlagsOverrideFile(t *testing.T) {
	cmd := newRunCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--loads", "x.yaml", "--voltage", "12", "--policy", "quantity-only"}))

	req, err := parseLoadFile([]byte("params:\n  voltage_v: 24\n  efficiency: 0.9\nloads:\n  - power_w: 10\n    hours_per_day: 1\n"))
	require.NoError(t, err)

	var f runFlags
	f.voltage = 12
	f.policy = "quantity-only"
	f.apply(cmd, &req)

	assert.Equal(t, 12.0, *req.Params.VoltageV)
	assert.Equal(t, 0.9, *req.Params.Efficiency)
	assert.Equal(t, "quantity-only", req.Policy)
	assert.Zero(t, req.UnitVoltage)
}

func TestRequestPayload(t *testing.T) {
	req, err := parseLoadFile([]byte("- model: TV\n  hours_per_day: 5\n"))
	require.NoError(t, err)

	payload, id, err := requestPayload(req)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, id, decoded["request_id"])
	assert.Len(t, decoded["loads"], 1)
}
