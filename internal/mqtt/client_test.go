package mqtt

import (
	"testing"

	"github.com/kilianknoll/kostal-modbusquery/internal/config"
	"github.com/kilianknoll/kostal-modbusquery/pkg/kostal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseTopic string) *MQTTClient {
	cfg := &config.Config{
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: baseTopic,
		},
	}
	return CreateMQTTClient(cfg, OptsFromConfig(cfg), nil, nil)
}

func TestRegisterTopicSanitize(t *testing.T) {

	assert := assert.New(t)

	c := newTestClient("haus/kostal")

	assert.Equal("haus/kostal/act_state_of_charge", c.RegisterTopic("Act. state of charge"))
	assert.Equal("haus/kostal/inverter_generation_power_actual", c.RegisterTopic("Inverter Generation Power (actual)"))
	assert.Equal("haus/kostal/actual_battery_charge_minus_or_discharge_plus_current",
		c.RegisterTopic("Actual battery charge -minus or discharge -plus current"))
	assert.Equal("haus/kostal/software_version_io_controller_ioc", c.RegisterTopic("Software-Version IO-Controller (IOC)"))
}

func TestMetricTopic(t *testing.T) {

	assert := assert.New(t)

	c := newTestClient("kostal")
	assert.Equal("kostal/derived/autarky_rate", c.MetricTopic("Autarky Rate"))
}

func TestBridgeStateTopic(t *testing.T) {

	assert := assert.New(t)

	c := newTestClient("kostal")
	assert.Equal("kostal/bridge/state", c.BridgeStateTopic())
}

func TestSnapshotTopics(t *testing.T) {

	reader, err := kostal.CreateTestInverterReader()
	require.NoError(t, err)
	snapshot, err := reader.ReadAll()
	require.NoError(t, err)

	c := newTestClient("kostal")
	topics := c.SnapshotTopics(snapshot)

	assert.Len(t, topics, len(snapshot))
	assert.Contains(t, topics, "kostal/grid_frequency")
	assert.Contains(t, topics, "kostal/total_dc_power")
	// the two battery serial number registers must not collapse into one topic
	assert.Contains(t, topics, "kostal/battery_serial_number")
	assert.Contains(t, topics, "kostal/battery_serial_number_1070")
}
