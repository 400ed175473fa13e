package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkava/sunshift/internal/loop"
	"github.com/hkava/sunshift/internal/transition"
)

// mockClient captures published messages.
type mockClient struct {
	topic      string
	payload    []byte
	retained   bool
	publishErr error
	published  int
}

func (m *mockClient) Connect(ctx context.Context) error { return nil }
func (m *mockClient) Disconnect()                       {}
func (m *mockClient) IsConnected() bool                 { return true }

func (m *mockClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.topic = topic
	m.retained = retained
	m.payload = payload
	m.published++
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestOnChangePublishesState(t *testing.T) {
	client := &mockClient{}
	p := NewPublisher(client, "sunshift/state", testLogger())
	p.now = func() time.Time {
		return time.Date(2024, 11, 2, 16, 30, 0, 0, time.UTC)
	}

	p.OnChange(loop.Update{
		Elevation: -2.75,
		Period:    transition.Period{Kind: transition.PeriodTransition, Fraction: 0.361},
		Setting: transition.ColorSetting{
			Temp:       4222,
			Gamma:      [3]float64{1, 1, 1},
			Brightness: 0.95,
		},
	})

	require.Equal(t, 1, client.published)
	assert.Equal(t, "sunshift/state", client.topic)
	assert.True(t, client.retained, "state should be retained for late subscribers")

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(client.payload, &msg))

	assert.Equal(t, "Transition (36.1% day)", msg["period"])
	assert.Equal(t, float64(4222), msg["color_temp"])
	assert.Equal(t, 0.95, msg["brightness"])
	assert.Equal(t, -2.75, msg["elevation"])
	assert.Equal(t, "2024-11-02T16:30:00Z", msg["timestamp"])
}

func TestOnChangeSwallowsPublishFailure(t *testing.T) {
	client := &mockClient{publishErr: errors.New("broker gone")}
	p := NewPublisher(client, "sunshift/state", testLogger())

	// Must not panic or propagate; the display loop owns the process.
	p.OnChange(loop.Update{
		Period:  transition.Period{Kind: transition.PeriodNight},
		Setting: transition.Neutral(),
	})

	assert.Equal(t, 0, client.published)
}
