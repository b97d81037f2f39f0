package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tradehub_backend/internal/logger"

	"github.com/nats-io/nats.go"
)

// Subjects публикуемых событий жизненного цикла работ
const (
	SubjectJobCreated  = "jobs.created"
	SubjectJobApplied  = "jobs.applied"
	SubjectJobDecided  = "jobs.decided"
	SubjectUserCreated = "users.created"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

// JobEvent - полезная нагрузка событий jobs.*
type JobEvent struct {
	JobID          string `json:"job_id"`
	JobTitle       string `json:"job_title"`
	Category       string `json:"category"`
	CustomerID     string `json:"customer_id"`
	TradespersonID string `json:"tradesperson_id,omitempty"`
	Decision       string `json:"decision,omitempty"`
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.Debug("publishing event", "subject", subject)

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// NoopBus используется когда NATS не сконфигурирован: публикация
// проглатывается, подписки не регистрируются. Доставка уведомлений
// best-effort и не блокирует основную транзакцию.
type NoopBus struct{}

func (NoopBus) Publish(ctx context.Context, subject string, data interface{}) error { return nil }
func (NoopBus) Subscribe(subject string, handler func(msg *Message)) error          { return nil }
func (NoopBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	return nil
}
func (NoopBus) Close() error { return nil }
