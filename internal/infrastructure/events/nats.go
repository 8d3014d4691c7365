package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
)

// publisher is the subset of *nats.Conn used here.
type publisher interface {
	Publish(subject string, data []byte) error
}

// AlertEvent is published on <subject>.alert for every alert of a report.
type AlertEvent struct {
	EventID        string           `json:"event_id"`
	RunID          string           `json:"run_id"`
	RestaurantID   int64            `json:"restaurant_id"`
	RestaurantName string           `json:"restaurant_name"`
	Type           domain.AlertType `json:"type"`
	Message        string           `json:"message"`
	Date           string           `json:"date,omitempty"`
	Keyword        string           `json:"keyword,omitempty"`
	Count          int              `json:"count"`
}

// ReportEvent is published on <subject>.report once per assembled report.
type ReportEvent struct {
	EventID        string   `json:"event_id"`
	RunID          string   `json:"run_id"`
	RestaurantID   int64    `json:"restaurant_id"`
	RestaurantName string   `json:"restaurant_name"`
	HealthScore    int      `json:"health_score"`
	TotalReviews   int      `json:"total_reviews"`
	AlertCount     int      `json:"alert_count"`
	SmartAlerts    []string `json:"smart_alerts"`
}

// NATSPublisher fans reports and alerts out over NATS subjects.
type NATSPublisher struct {
	conn    publisher
	subject string
	newID   func() string
}

var _ ports.AlertPublisher = (*NATSPublisher)(nil)

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(conn publisher, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject, newID: uuid.NewString}
}

// Connect dials NATS with reconnect handling; connection events go to logger.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url, connectOptions(logger)...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}
	return nc, nil
}

func connectOptions(logger *slog.Logger) []nats.Option {
	if logger == nil {
		logger = slog.Default()
	}
	return []nats.Option{
		nats.Name("reviewpulse"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.Timeout(5 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}
}

// PublishReport emits one event per alert followed by the report event.
func (p *NATSPublisher) PublishReport(ctx context.Context, runID string, report domain.RestaurantReport) error {
	for _, alert := range report.Alerts {
		if err := ctx.Err(); err != nil {
			return err
		}
		event := AlertEvent{
			EventID:        p.newID(),
			RunID:          runID,
			RestaurantID:   report.RestaurantID,
			RestaurantName: report.RestaurantName,
			Type:           alert.Type,
			Message:        alert.Message,
			Date:           alert.Date,
			Keyword:        alert.Keyword,
			Count:          alert.Count,
		}
		if err := p.publish(p.subject+".alert", event); err != nil {
			return err
		}
	}

	return p.publish(p.subject+".report", ReportEvent{
		EventID:        p.newID(),
		RunID:          runID,
		RestaurantID:   report.RestaurantID,
		RestaurantName: report.RestaurantName,
		HealthScore:    report.HealthScore,
		TotalReviews:   report.SentimentAnalysis.TotalReviews,
		AlertCount:     len(report.Alerts),
		SmartAlerts:    report.SmartAlerts,
	})
}

func (p *NATSPublisher) publish(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}
