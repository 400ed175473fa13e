// Package telemetry publishes applied display state over MQTT so home
// automation systems can react to the daemon's day/night cycle.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hkava/sunshift/internal/loop"
	"github.com/hkava/sunshift/pkg/mqtt"
)

// statePayload is the JSON document published on every applied change.
type statePayload struct {
	Period     string  `json:"period"`
	ColorTemp  int     `json:"color_temp"`
	Brightness float64 `json:"brightness"`
	Elevation  float64 `json:"elevation"`
	Timestamp  string  `json:"timestamp"`
}

// Publisher forwards control loop updates to an MQTT topic.
type Publisher struct {
	client mqtt.Client
	topic  string
	logger *slog.Logger
	now    func() time.Time
}

// NewPublisher creates a publisher on the given topic.
func NewPublisher(client mqtt.Client, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		topic:  topic,
		logger: logger,
		now:    time.Now,
	}
}

// OnChange publishes one update. Failures are logged, not propagated: losing
// a telemetry message must never take down the display adjustment.
func (p *Publisher) OnChange(u loop.Update) {
	payload, err := p.encode(u)
	if err != nil {
		p.logger.Error("Failed to encode state payload", "error", err)
		return
	}

	// Retained so late subscribers see the current state immediately.
	if err := p.client.Publish(p.topic, 0, true, payload); err != nil {
		p.logger.Warn("Failed to publish state", "topic", p.topic, "error", err)
		return
	}

	p.logger.Debug("Published state",
		"topic", p.topic,
		"period", u.Period.String(),
		"color_temp", u.Setting.Temp)
}

func (p *Publisher) encode(u loop.Update) ([]byte, error) {
	msg := statePayload{
		Period:     u.Period.String(),
		ColorTemp:  u.Setting.Temp,
		Brightness: u.Setting.Brightness,
		Elevation:  u.Elevation,
		Timestamp:  p.now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state message: %w", err)
	}
	return payload, nil
}
