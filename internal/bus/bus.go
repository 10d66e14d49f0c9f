// Package bus connects the assistant to a websocket message hub as a
// text-only shard.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	KindText  = "text"
	KindReply = "reply"
	Broadcast = "ALL"
)

// ErrBadMessage marks a frame that arrived intact but could not be decoded.
var ErrBadMessage = errors.New("bad message")

type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
	Intent  string `json:"intent,omitempty"`
}

// Handler answers one text message with an intent label and reply text.
type Handler func(ctx context.Context, text string) (label, reply string)

type Bus struct {
	url   string
	shard string
	retry time.Duration

	mu   sync.Mutex
	conn *websocket.Conn
}

func Dial(ctx context.Context, wsURL, shard string) (*Bus, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}

	b := &Bus{url: u.String(), shard: shard, retry: 2 * time.Second}
	if err := b.connect(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bus) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", b.url, err)
	}

	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()

	log.Info("Connected to bus", "url", b.url, "shard", b.shard)
	return nil
}

func (b *Bus) current() *websocket.Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn
}

func (b *Bus) Read() (*Message, error) {
	_, data, err := b.current().ReadMessage()
	if err != nil {
		return nil, err
	}

	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadMessage, err)
	}
	return &m, nil
}

func (b *Bus) Write(m *Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn.WriteMessage(websocket.TextMessage, data)
}

func (b *Bus) Close() error {
	return b.current().Close()
}

// Serve answers text messages addressed to this shard until ctx ends.
// A dropped connection is redialed.
func (b *Bus) Serve(ctx context.Context, handle Handler) error {
	stop := context.AfterFunc(ctx, func() { b.Close() })
	defer stop()

	for {
		msg, err := b.Read()
		if ctx.Err() != nil {
			return nil
		}

		switch {
		case err == nil:
		case errors.Is(err, ErrBadMessage):
			log.Warn("Dropping malformed message", "err", err)
			continue
		default:
			log.Warn("Bus connection lost", "err", err)
			if err := b.reconnect(ctx); err != nil {
				return nil
			}
			continue
		}

		if !b.addressed(msg) || msg.Kind != KindText {
			continue
		}

		label, reply := handle(ctx, msg.Content)

		resp := &Message{
			From:    b.shard,
			To:      msg.From,
			Kind:    KindReply,
			Content: reply,
			Intent:  label,
		}
		if err := b.Write(resp); err != nil {
			log.Error("Failed to send reply", "err", err)
		}
	}
}

func (b *Bus) addressed(m *Message) bool {
	return m.To == b.shard || m.To == Broadcast
}

func (b *Bus) reconnect(ctx context.Context) error {
	b.current().Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.retry):
		}

		if err := b.connect(ctx); err != nil {
			log.Debug("Reconnect failed", "err", err)
			continue
		}
		return nil
	}
}
