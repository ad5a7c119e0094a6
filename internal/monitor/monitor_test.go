package monitor

import (
	"testing"
	"time"

	"github.com/kilianknoll/kostal-modbusquery/internal/config"
	"github.com/kilianknoll/kostal-modbusquery/internal/mqtt"
	"github.com/kilianknoll/kostal-modbusquery/pkg/kostal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testMonitor(t *testing.T) *Monitor {
	t.Helper()
	reader, err := kostal.CreateTestInverterReader()
	require.NoError(t, err)

	cfg := &config.Config{
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "kostal",
		},
	}
	mqttClient := mqtt.CreateMQTTClient(cfg, mqtt.OptsFromConfig(cfg), nil, nil)

	return NewMonitor(reader, mqttClient, 5*time.Second, zap.NewNop())
}

func TestCollect(t *testing.T) {
	m := testMonitor(t)

	topics, err := m.collect()
	require.NoError(t, err)

	// every catalog register plus six derived metrics
	assert.Len(t, topics, len(kostal.Catalog)+6)
	assert.Contains(t, topics, "kostal/grid_frequency")
	assert.Contains(t, topics, "kostal/derived/autarky_rate")
	assert.Contains(t, topics, "kostal/derived/home_consumption")

	rate := topics["kostal/derived/autarky_rate"].(float64)
	assert.GreaterOrEqual(t, rate, 0.0)
	assert.LessOrEqual(t, rate, 100.0)
}
