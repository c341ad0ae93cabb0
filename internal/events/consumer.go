package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	natspkg "github.com/nats-io/nats.go"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/logging"
)

// DefaultQueue is the queue group shared by all notifier replicas, so each
// event is handled once.
const DefaultQueue = "notifyd"

// Consumer subscribes to order and account subjects on NATS.
type Consumer struct {
	nc      *natspkg.Conn
	handler *Handler
	queue   string
	timeout time.Duration
	subs    []*natspkg.Subscription
}

// Connect dials url. name identifies the client in NATS monitoring.
func Connect(url, name string) (*natspkg.Conn, error) {
	nc, err := natspkg.Connect(url,
		natspkg.Name(name),
		natspkg.MaxReconnects(-1),
		natspkg.DisconnectErrHandler(func(_ *natspkg.Conn, err error) {
			if err != nil {
				logging.Get().Warn().Err(err).Msg("nats disconnected")
			}
		}),
		natspkg.ReconnectHandler(func(c *natspkg.Conn) {
			logging.Get().Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

// NewConsumer builds a consumer. timeout bounds each event's dispatch.
func NewConsumer(nc *natspkg.Conn, h *Handler, queue string, timeout time.Duration) *Consumer {
	if queue == "" {
		queue = DefaultQueue
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Consumer{nc: nc, handler: h, queue: queue, timeout: timeout}
}

// Start subscribes to every subject in Subjects.
func (c *Consumer) Start() error {
	for _, subject := range Subjects {
		sub, err := c.nc.QueueSubscribe(subject, c.queue, c.onMessage)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		c.subs = append(c.subs, sub)
	}
	logging.Get().Info().Strs("subjects", Subjects).Str("queue", c.queue).Msg("event consumer started")
	return nil
}

// IsConnected reports whether the NATS connection is up.
func (c *Consumer) IsConnected() bool {
	return c.nc != nil && c.nc.Status() == natspkg.CONNECTED
}

// Stop drains subscriptions so in-flight events finish, then closes the
// connection.
func (c *Consumer) Stop() error {
	if c.nc == nil {
		return nil
	}
	return c.nc.Drain()
}

func (c *Consumer) onMessage(msg *natspkg.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	reply, err := c.process(ctx, msg.Subject, msg.Data)
	if msg.Reply != "" {
		if rerr := msg.Respond(reply); rerr != nil {
			logging.Get().Warn().Err(rerr).Str("subject", msg.Subject).Msg("failed to reply")
		}
	}
	if err != nil {
		logging.Get().Warn().Err(err).Str("subject", msg.Subject).Msg("dropping event")
	}
}

// process handles one message and returns the JSON reply body.
func (c *Consumer) process(ctx context.Context, subject string, data []byte) ([]byte, error) {
	res, err := c.handler.Handle(ctx, subject, data)
	if err != nil {
		b, _ := json.Marshal(map[string]string{"error": err.Error()})
		return b, err
	}
	b, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode reply: %w", err)
	}
	return b, nil
}
