package monitor

import (
	"context"
	"time"

	"github.com/kilianknoll/kostal-modbusquery/internal/mqtt"
	"github.com/kilianknoll/kostal-modbusquery/pkg/kostal"

	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Monitor polls the inverter on a fixed interval and republishes every
// register plus the derived metrics over MQTT.
type Monitor struct {
	reader    kostal.InverterReader
	mqtt      *mqtt.MQTTClient
	interval  time.Duration
	scheduler quartz.Scheduler
	logger    *zap.Logger
}

func NewMonitor(reader kostal.InverterReader, mqttClient *mqtt.MQTTClient, interval time.Duration, logger *zap.Logger) *Monitor {
	return &Monitor{
		reader:   reader,
		mqtt:     mqttClient,
		interval: interval,
		logger:   logger.With(zap.String("component", "monitor")),
	}
}

// Start schedules the poll job. The reader must already be open.
func (m *Monitor) Start(ctx context.Context) error {
	m.scheduler = quartz.NewStdScheduler()
	m.scheduler.Start(ctx)

	pollJob := job.NewFunctionJob(func(ctx context.Context) (int, error) {
		published, err := m.PublishOnce()
		if err != nil {
			m.logger.Error("poll failed", zap.Error(err))
			return 0, err
		}
		m.logger.Debug("poll complete", zap.Int("published", published))
		return published, nil
	})

	return m.scheduler.ScheduleJob(
		quartz.NewJobDetail(pollJob, quartz.NewJobKey("kostal-poll")),
		quartz.NewSimpleTrigger(m.interval))
}

// Wait blocks until the scheduler shuts down.
func (m *Monitor) Wait(ctx context.Context) {
	m.scheduler.Wait(ctx)
}

func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}

// collect assembles one full round of topic => payload pairs: every catalog
// register plus the derived dashboard metrics.
func (m *Monitor) collect() (map[string]any, error) {
	snapshot, err := m.reader.ReadAll()
	if err != nil {
		return nil, err
	}
	topics := m.mqtt.SnapshotTopics(snapshot)

	flow, err := kostal.PowerFlowFromSnapshot(snapshot)
	if err != nil {
		return nil, err
	}
	metrics := kostal.Derive(*flow)
	topics[m.mqtt.MetricTopic("home_consumption")] = metrics.HomeConsumptionWatt
	topics[m.mqtt.MetricTopic("power_to_grid")] = metrics.PowerToGridWatt
	topics[m.mqtt.MetricTopic("battery_power")] = metrics.BatteryPowerWatt
	topics[m.mqtt.MetricTopic("string_power")] = metrics.StringPowerWatt
	topics[m.mqtt.MetricTopic("self_consumption_rate")] = metrics.SelfConsumptionRate
	topics[m.mqtt.MetricTopic("autarky_rate")] = metrics.AutarkyRate

	return topics, nil
}

// PublishOnce runs one poll-and-publish round and reports how many topics
// were pushed.
func (m *Monitor) PublishOnce() (int, error) {
	topics, err := m.collect()
	if err != nil {
		return 0, err
	}

	m.mqtt.PublishOnline(m.logPublishError("bridge/state"), publishTimeout)
	for topic, value := range topics {
		m.mqtt.PublishValue(topic, value, m.logPublishError(topic), publishTimeout)
	}
	return len(topics), nil
}

func (m *Monitor) logPublishError(topic string) func(error) {
	return func(err error) {
		if err != nil {
			m.logger.Warn("publish failed", zap.String("topic", topic), zap.Error(err))
		}
	}
}
