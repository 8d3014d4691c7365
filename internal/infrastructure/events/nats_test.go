package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewPulse/internal/domain"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	messages []message
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message{subject: subject, data: data})
	return nil
}

func TestPublishReport(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	pub := NewNATSPublisher(conn, "reviewpulse")
	pub.newID = func() string { return "evt" }

	report := domain.RestaurantReport{
		RestaurantID:      3,
		RestaurantName:    "کباب",
		HealthScore:       42,
		SentimentAnalysis: domain.SentimentSummary{TotalReviews: 9},
		Alerts: []domain.Alert{
			domain.NegativeSpikeAlert("2024-01-05", 10),
			domain.RepeatedIssueAlert("دیر", 4),
		},
	}

	require.NoError(t, pub.PublishReport(context.Background(), "run-1", report))
	require.Len(t, conn.messages, 3)
	assert.Equal(t, "reviewpulse.alert", conn.messages[0].subject)
	assert.Equal(t, "reviewpulse.alert", conn.messages[1].subject)
	assert.Equal(t, "reviewpulse.report", conn.messages[2].subject)

	var alert AlertEvent
	require.NoError(t, json.Unmarshal(conn.messages[1].data, &alert))
	assert.Equal(t, "دیر", alert.Keyword)
	assert.Equal(t, "run-1", alert.RunID)

	var rep ReportEvent
	require.NoError(t, json.Unmarshal(conn.messages[2].data, &rep))
	assert.Equal(t, 42, rep.HealthScore)
	assert.Equal(t, 2, rep.AlertCount)
	assert.Equal(t, 9, rep.TotalReviews)
}

func TestPublishReportPropagatesErrors(t *testing.T) {
	t.Parallel()

	pub := NewNATSPublisher(&fakeConn{err: errors.New("nats down")}, "rp")
	err := pub.PublishReport(context.Background(), "run", domain.RestaurantReport{RestaurantID: 1})
	assert.ErrorContains(t, err, "publish rp.report")
}

func TestConnectOptionsLogThroughSlog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil)).With("component", "events")

	opts := nats.GetDefaultOptions()
	for _, apply := range connectOptions(logger) {
		require.NoError(t, apply(&opts))
	}
	assert.Equal(t, "reviewpulse", opts.Name)
	assert.Equal(t, 10, opts.MaxReconnect)

	opts.DisconnectedErrCB(nil, errors.New("connection reset"))
	opts.ClosedCB(nil)

	out := buf.String()
	assert.Contains(t, out, `"msg":"NATS disconnected"`)
	assert.Contains(t, out, `"error":"connection reset"`)
	assert.Contains(t, out, `"msg":"NATS connection closed"`)
	assert.Contains(t, out, `"component":"events"`)
}
