// Package publish pushes finished optimization runs to an MQTT broker so
// downstream energy dashboards can consume schedules without polling the
// API. Publishing is best-effort: a broker outage never fails a run.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"quantum-energy-scheduler/internal/api/models"
	"quantum-energy-scheduler/internal/config"
	"quantum-energy-scheduler/internal/logger"
	"quantum-energy-scheduler/internal/pipeline"
)

const publishTimeout = 5 * time.Second

// Publisher sends completed runs to a broker topic.
type Publisher struct {
	client mqtt.Client
	topic  string
	log    *logger.Logger
}

// New connects to the broker in cfg. Returns nil (a disabled publisher)
// when no broker is configured.
func New(cfg config.MQTTConfig, log *logger.Logger) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, nil
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "quantum-energy-scheduler"
	}
	opts := mqtt.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to broker %s: %w", cfg.Broker, token.Error())
	}
	log.Infow("connected to mqtt broker", "broker", cfg.Broker, "topic", cfg.Topic)
	return &Publisher{client: client, topic: cfg.Topic, log: log}, nil
}

// Publish sends the run's result as JSON on <topic>/<region>. Errors are
// logged, never returned; the HTTP response does not wait on the broker.
func (p *Publisher) Publish(run *pipeline.Run) {
	payload, err := json.Marshal(models.NewOptimizeResponse(run.ID, run.Region, run.Result))
	if err != nil {
		p.log.Errorw("marshal run for publish", "run", run.ID, "error", err)
		return
	}
	topic := p.topic + "/" + run.Region
	token := p.client.Publish(topic, 0, false, payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			p.log.Warnw("publish timed out", "run", run.ID, "topic", topic)
			return
		}
		if err := token.Error(); err != nil {
			p.log.Errorw("publish failed", "run", run.ID, "topic", topic, "error", err)
		}
	}()
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
