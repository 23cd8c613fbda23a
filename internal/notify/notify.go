// Package notify publishes curve summaries of analyzed recordings over MQTT.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bakecurve-service/internal/bakecurve"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTopic is used when no topic pattern is configured.
const DefaultTopic = "bakecurve/{recording_id}/curves"

// Config holds MQTT connection and topic settings.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string // may contain {recording_id}
	Retain   bool   // keep the last message per topic on the broker
}

// Message is the JSON payload published for each analysis.
type Message struct {
	RecordingID bakecurve.RecordingID    `json:"recording_id"`
	AnalyzedAt  time.Time                `json:"analyzed_at"`
	CurveCount  int                      `json:"curve_count"`
	Curves      []bakecurve.CurveSummary `json:"curves"`
}

// publishClient is the slice of mqtt.Client the publisher needs.
type publishClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher sends curve summaries to an MQTT broker with QoS 1.
type Publisher struct {
	client publishClient
	topic  string
	retain bool
	log    *slog.Logger
	close  func()
}

// Connect dials the broker in cfg and returns a Publisher on that connection.
func Connect(cfg Config, log *slog.Logger) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info("mqtt connected", slog.String("broker", cfg.Broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", slog.String("error", err.Error()))
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", cfg.Broker, token.Error())
	}

	p := NewPublisher(client, cfg, log)
	p.close = func() { client.Disconnect(250) }
	return p, nil
}

// NewPublisher returns a Publisher on an existing client using the topic
// and retain settings of cfg. An empty topic uses DefaultTopic.
func NewPublisher(client publishClient, cfg Config, log *slog.Logger) *Publisher {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{client: client, topic: topic, retain: cfg.Retain, log: log}
}

// PublishCurves publishes the summaries of one analysis. It waits for the
// broker acknowledgement or for ctx to end.
func (p *Publisher) PublishCurves(ctx context.Context, id bakecurve.RecordingID, analyzedAt time.Time, curves []bakecurve.CurveSummary) error {
	if curves == nil {
		curves = []bakecurve.CurveSummary{}
	}
	payload, err := json.Marshal(Message{
		RecordingID: id,
		AnalyzedAt:  analyzedAt,
		CurveCount:  len(curves),
		Curves:      curves,
	})
	if err != nil {
		return fmt.Errorf("marshal curves: %w", err)
	}

	topic := formatTopic(p.topic, string(id))
	token := p.client.Publish(topic, 1, p.retain, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publish to %s: %w", topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.log.Debug("curves published",
		slog.String("recording_id", string(id)),
		slog.String("topic", topic),
		slog.Int("curves", len(curves)))
	return nil
}

// Close disconnects a Publisher created by Connect.
func (p *Publisher) Close() {
	if p.close != nil {
		p.close()
	}
}

// formatTopic replaces the {recording_id} placeholder.
func formatTopic(pattern, recordingID string) string {
	return strings.ReplaceAll(pattern, "{recording_id}", recordingID)
}
