// Package notify fans safety status changes out to a user's friends.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"safesphere/models"
)

type Notification struct {
	ToUserID   int64               `json:"to_user_id"`
	FromUserID int64               `json:"from_user_id"`
	Status     models.SafetyStatus `json:"status"`
	At         time.Time           `json:"at"`
}

// Notifier delivers a single notification. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes one log line per notification.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Notifying friend of status change",
		"from_user_id", n.FromUserID,
		"to_user_id", n.ToUserID,
		"status", n.Status)
	return nil
}

// SubjectPrefix is followed by the recipient's user id.
const SubjectPrefix = "safesphere.notify."

func Subject(toUserID int64) string {
	return fmt.Sprintf("%s%d", SubjectPrefix, toUserID)
}

// NATSNotifier publishes each notification as JSON on the recipient's subject.
type NATSNotifier struct {
	conn *nats.Conn
}

func NewNATSNotifier(url string, logger *slog.Logger) (*NATSNotifier, error) {
	opts := []nats.Option{
		nats.Name("safesphere"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSNotifier{conn: conn}, nil
}

func (n *NATSNotifier) Notify(_ context.Context, note Notification) error {
	data, err := json.Marshal(note)
	if err != nil {
		return err
	}
	return n.conn.Publish(Subject(note.ToUserID), data)
}

func (n *NATSNotifier) Close() {
	n.conn.Close()
}

// MultiNotifier delivers to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
