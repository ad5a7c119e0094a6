package mqtt

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/kilianknoll/kostal-modbusquery/internal/config"
	"github.com/kilianknoll/kostal-modbusquery/pkg/kostal"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	MQTT_PAYLOAD_ONLINE  = "online"
	MQTT_PAYLOAD_OFFLINE = "offline"
)

func OptsFromConfig(cfg *config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port))
	opts.SetClientID(fmt.Sprintf("kostalquery_%d", rand.Intn(1000)))
	if cfg.MQTT.Username != "" && cfg.MQTT.Password != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	opts.WillEnabled = true
	opts.WillPayload = []byte(MQTT_PAYLOAD_OFFLINE)
	opts.WillRetained = true
	opts.WillTopic = bridgeStateTopic(cfg.MQTT.BaseTopic)
	opts.WillQos = 0

	return opts
}

func CreateMQTTClient(cfg *config.Config, opts *mqtt.ClientOptions, onConnectHandler func(client mqtt.Client),
	onConnectionLostHandler func(mqtt.Client, error)) *MQTTClient {
	if onConnectHandler != nil {
		opts.OnConnect = onConnectHandler
	}
	if onConnectionLostHandler != nil {
		opts.OnConnectionLost = onConnectionLostHandler
	}
	return &MQTTClient{
		client: mqtt.NewClient(opts),
		cfg:    cfg.MQTT,
	}
}

type MQTTClient struct {
	client mqtt.Client
	cfg    config.MQTTConfig
}

func (c *MQTTClient) baseTopic() string {
	return c.cfg.BaseTopic
}

func (c *MQTTClient) BridgeStateTopic() string {
	return bridgeStateTopic(c.baseTopic())
}

// RegisterTopic maps a catalog register name onto a topic below the base
// topic, e.g. "Act. state of charge" => "<base>/act_state_of_charge".
func (c *MQTTClient) RegisterTopic(registerName string) string {
	return fmt.Sprintf("%s/%s", c.baseTopic(), sanitizeTopicPart(registerName))
}

func (c *MQTTClient) MetricTopic(metricName string) string {
	return fmt.Sprintf("%s/derived/%s", c.baseTopic(), sanitizeTopicPart(metricName))
}

func (c *MQTTClient) Publish(topic string, payload any, qos byte, retain bool, continuation func(error), timeout time.Duration) {
	token := c.client.Publish(topic, qos, retain, payload)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT publish timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

// PublishValue renders a decoded register or metric value to its string
// payload form.
func (c *MQTTClient) PublishValue(topic string, value any, continuation func(error), timeout time.Duration) {
	c.Publish(topic, fmt.Sprintf("%v", value), 0, false, continuation, timeout)
}

func (c *MQTTClient) PublishOnline(continuation func(error), timeout time.Duration) {
	c.Publish(c.BridgeStateTopic(), MQTT_PAYLOAD_ONLINE, 0, true, continuation, timeout)
}

func (c *MQTTClient) Connect(continuation func(error), timeout time.Duration) {
	token := c.client.Connect()
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT connect timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Disconnect(timeout time.Duration) {
	c.client.Disconnect(uint(timeout.Milliseconds()))
}

// SnapshotTopics pairs every snapshot entry with its publish topic. Two
// catalog names sanitize to the same topic (the battery serial numbers at 527
// and 1070); later duplicates get their address as suffix.
func (c *MQTTClient) SnapshotTopics(snapshot kostal.Snapshot) map[string]any {
	out := make(map[string]any, len(snapshot))
	for _, v := range snapshot {
		topic := c.RegisterTopic(v.Register.Name)
		if _, taken := out[topic]; taken {
			topic = fmt.Sprintf("%s_%d", topic, v.Register.Addr)
		}
		out[topic] = v.Value
	}
	return out
}

var topicPartRegexp = regexp.MustCompile("[^a-z0-9_]+")

func sanitizeTopicPart(name string) string {
	part := strings.ToLower(name)
	part = topicPartRegexp.ReplaceAllString(part, "_")
	return strings.Trim(part, "_")
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}
