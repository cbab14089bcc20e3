package service

import (
	"context"
	"log/slog"
	"sync"

	"adboard/internal/core/domain"
	"adboard/internal/core/port"
	"adboard/internal/observability"
)

// listAccounts fetches every program account of one kind and decodes it.
// Accounts that fail to decode are skipped with a warning rather than
// failing the whole listing: a node can serve accounts written by a newer
// program revision than this client understands.
func listAccounts[T any](ctx context.Context, c *Client, kind domain.AccountKind, decode func([]byte) (T, error)) ([]port.AccountWithAddress[T], error) {
	raws, err := c.runtime.ListAccounts(ctx, kind)
	if err != nil {
		return nil, err
	}
	accounts := make([]port.AccountWithAddress[T], 0, len(raws))
	for _, raw := range raws {
		decoded, err := decode(raw.Data)
		if err != nil {
			c.log.WarnContext(ctx, "skipping undecodable account",
				slog.String("kind", kind.String()),
				slog.String("address", raw.Address.String()),
				slog.Any("error", err),
			)
			continue
		}
		accounts = append(accounts, port.AccountWithAddress[T]{Address: raw.Address, Data: decoded})
	}
	return accounts, nil
}

// onChange subscribes to one account and delivers each decoded update to the
// handler on a dedicated goroutine. The handler also observes the cache:
// every update refreshes the cached raw data so subsequent fetches see the
// subscribed state without a round trip.
func onChange[T any](ctx context.Context, c *Client, address domain.Address, decode func([]byte) (T, error), handler port.ChangeHandler[T]) (port.CancelFunc, error) {
	sub, err := c.runtime.SubscribeAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	observability.SubscriptionOpened()

	go func() {
		defer observability.SubscriptionClosed()
		for update := range sub.Updates() {
			c.cache.Put(update.Address, update.Data)
			decoded, err := decode(update.Data)
			if err != nil {
				c.log.Warn("dropping undecodable update",
					slog.String("address", update.Address.String()),
					slog.Any("error", err),
				)
				continue
			}
			handler(port.AccountWithAddress[T]{Address: update.Address, Data: decoded})
		}
		if err := sub.Err(); err != nil {
			c.log.Warn("account subscription ended",
				slog.String("address", address.String()),
				slog.Any("error", err),
			)
		}
	}()

	var once sync.Once
	var id int
	cancel := func() {
		once.Do(func() {
			sub.Cancel()
			c.unregisterSub(id)
		})
	}
	id = c.registerSub(cancel)
	return cancel, nil
}
