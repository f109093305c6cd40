package stream

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"ixr-flow/metric"
)

// PublisherConfig holds the outbound metric stream settings.
type PublisherConfig struct {
	Broker          string
	Port            int
	Username        string
	Password        string
	Topic           string
	UseTLS          bool
	InsecureSkipTLS bool
}

func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		Broker: "localhost",
		Port:   1883,
		Topic:  "ixr/metrics/power",
	}
}

// Publisher pushes the per-tick power metric to an MQTT topic, the outbound
// equivalent of the original hardware stream. It implements metric.Sink.
type Publisher struct {
	config PublisherConfig
	client mqtt.Client
}

func NewPublisher(config PublisherConfig) *Publisher {
	return &Publisher{config: config}
}

func (p *Publisher) Start() error {
	opts := mqtt.NewClientOptions()

	protocol := "tcp"
	if p.config.UseTLS {
		protocol = "tls"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", protocol, p.config.Broker, p.config.Port))
	opts.SetClientID(fmt.Sprintf("ixr-flow-publisher-%d", time.Now().Unix()))

	if p.config.Username != "" {
		opts.SetUsername(p.config.Username)
		opts.SetPassword(p.config.Password)
	}
	if p.config.UseTLS {
		opts.SetTLSConfig(&tls.Config{
			InsecureSkipVerify: p.config.InsecureSkipTLS,
		})
	}

	opts.SetKeepAlive(60 * time.Second)
	opts.SetAutoReconnect(true)

	p.client = mqtt.NewClient(opts)

	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("MQTT connect timeout")
	}
	if token.Error() != nil {
		return fmt.Errorf("MQTT connect failed: %w", token.Error())
	}

	log.Printf("[MQTT] Power metric stream publishing to %s", p.config.Topic)
	return nil
}

func (p *Publisher) Stop() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(1000)
	}
}

// Publish implements metric.Sink. Fire-and-forget: delivery failures are
// dropped, never blocking the tick.
func (p *Publisher) Publish(result metric.Result) {
	if p.client == nil || !p.client.IsConnected() {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"ts_ms":        result.Time.UnixMilli(),
		"power_metric": result.PowerMetric,
		"engagement":   result.Engagement,
	})
	if err != nil {
		return
	}
	p.client.Publish(p.config.Topic, 0, false, payload)
}
