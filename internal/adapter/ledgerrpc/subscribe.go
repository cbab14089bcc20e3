package ledgerrpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"adboard/internal/core/domain"
	"adboard/internal/core/port"
)

const wsWriteTimeout = 10 * time.Second

type subscribeRequest struct {
	Method  string `json:"method"`
	Address string `json:"address"`
}

type updatePayload struct {
	Address string `json:"address"`
	Data    string `json:"data"`
	Slot    uint64 `json:"slot"`
}

// accountSubscription streams change notifications for one account over a
// dedicated websocket connection.
type accountSubscription struct {
	conn    *websocket.Conn
	updates chan port.AccountUpdate
	cancel  context.CancelFunc
	once    sync.Once

	mu  sync.Mutex
	err error
}

// SubscribeAccount dials the node's websocket endpoint and asks for change
// notifications on one address. The returned subscription stays open until
// Cancel, a context cancellation, or a stream failure; in every case the
// Updates channel is closed and Err reports the terminal cause, if any.
func (c *Client) SubscribeAccount(ctx context.Context, address domain.Address) (port.Subscription, error) {
	conn, _, err := websocket.Dial(ctx, c.wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: dial %s: %w", address, c.wsURL, err)
	}

	req, err := json.Marshal(subscribeRequest{Method: "adboard_subscribeAccount", Address: address.String()})
	if err != nil {
		_ = conn.Close(websocket.StatusInternalError, "encode failed")
		return nil, err
	}
	writeCtx, cancelWrite := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancelWrite()
	if err := conn.Write(writeCtx, websocket.MessageText, req); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return nil, fmt.Errorf("subscribe %s: %w", address, err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	sub := &accountSubscription{
		conn:    conn,
		updates: make(chan port.AccountUpdate, 16),
		cancel:  cancel,
	}
	go sub.readLoop(streamCtx, c.log.With(slog.String("account", address.String())))
	return sub, nil
}

func (s *accountSubscription) readLoop(ctx context.Context, log *slog.Logger) {
	defer close(s.updates)
	defer s.conn.Close(websocket.StatusNormalClosure, "stream closed")

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			// context cancellation and a clean remote close are normal
			// teardown, not stream failures
			if ctx.Err() == nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				log.WarnContext(ctx, "subscription stream failed", slog.Any("error", err))
				s.setErr(err)
			}
			return
		}

		var payload updatePayload
		if err := json.Unmarshal(data, &payload); err != nil {
			s.setErr(fmt.Errorf("malformed update: %w", err))
			return
		}
		address, err := domain.ParseAddress(payload.Address)
		if err != nil {
			s.setErr(fmt.Errorf("malformed update: %w", err))
			return
		}
		raw, err := base64.StdEncoding.DecodeString(payload.Data)
		if err != nil {
			s.setErr(fmt.Errorf("malformed update: %w", err))
			return
		}

		select {
		case s.updates <- port.AccountUpdate{Address: address, Data: raw, Slot: payload.Slot}:
		case <-ctx.Done():
			return
		}
	}
}

func (s *accountSubscription) Updates() <-chan port.AccountUpdate { return s.updates }

func (s *accountSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *accountSubscription) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *accountSubscription) Cancel() {
	s.once.Do(s.cancel)
}
