// Package service implements the marketplace account services on top of the
// ledger runtime port. Every mutating call follows the same shape: fetch and
// decode the touched accounts, replay the state change locally so an invalid
// request never reaches the node, then submit the encoded instruction. The
// runtime re-evaluates all guards atomically; the local replay only exists to
// fail fast with a precise domain error.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"adboard/internal/core/addr"
	"adboard/internal/core/domain"
	"adboard/internal/core/port"
	"adboard/internal/observability"
)

// Client bundles the shared plumbing of the account services.
type Client struct {
	runtime port.LedgerRuntime
	deriver addr.Deriver
	cache   *AccountCache
	mirror  port.MirrorStore
	log     *slog.Logger
	now     func() int64

	mu      sync.Mutex
	nextSub int
	subs    map[int]func()
}

// Options configures optional client behaviour; the zero value is usable.
type Options struct {
	Logger *slog.Logger
	// Mirror, when set, receives an eager upsert of every account the
	// client wrote, right after the post-transaction re-read. The periodic
	// syncer reconciles everything else.
	Mirror port.MirrorStore
	// Now supplies settlement timestamps. Defaults to time.Now().Unix.
	Now func() int64
}

func NewClient(runtime port.LedgerRuntime, deriver addr.Deriver, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = func() int64 { return time.Now().Unix() }
	}
	return &Client{
		runtime: runtime,
		deriver: deriver,
		cache:   NewAccountCache(),
		mirror:  opts.Mirror,
		log:     opts.Logger.With(slog.String("component", "service")),
		now:     opts.Now,
		subs:    make(map[int]func()),
	}
}

// Advertisers returns the advertiser-side service.
func (c *Client) Advertisers() port.AdvertiserService { return (*advertiserService)(c) }

// Providers returns the provider-side service.
func (c *Client) Providers() port.ProviderService { return (*providerService)(c) }

// Campaigns returns the campaign service.
func (c *Client) Campaigns() port.CampaignService { return (*campaignService)(c) }

// Locations returns the location, booking and settlement service.
func (c *Client) Locations() port.LocationService { return (*locationService)(c) }

// submit sends one encoded instruction and records the outcome. The action
// name doubles as the metrics label and log field.
func (c *Client) submit(ctx context.Context, action string, data []byte, accounts []port.AccountMeta) (port.TxResult, error) {
	ix := port.Instruction{
		Program:   c.deriver.Program(),
		Accounts:  accounts,
		Data:      data,
		RequestID: uuid.NewString(),
	}
	result, err := c.runtime.Submit(ctx, ix)
	if err != nil {
		observability.TrackInstruction(action, "error")
		c.log.ErrorContext(ctx, "instruction rejected",
			slog.String("action", action),
			slog.String("request_id", ix.RequestID),
			slog.Any("error", err),
		)
		return port.TxResult{}, err
	}
	observability.TrackInstruction(action, "ok")
	c.log.InfoContext(ctx, "instruction applied",
		slog.String("action", action),
		slog.String("request_id", ix.RequestID),
		slog.String("signature", result.Signature),
	)
	// the touched accounts changed on the node; drop stale copies
	for _, meta := range accounts {
		if meta.Writable {
			c.cache.Invalidate(meta.Address)
		}
	}
	if c.mirror != nil {
		c.refreshMirror(ctx, accounts)
	}
	return result, nil
}

// refreshMirror re-reads each written account and upserts it into the
// mirror. Failures are logged, not returned: the mirror is derived data and
// the periodic syncer will converge it.
func (c *Client) refreshMirror(ctx context.Context, accounts []port.AccountMeta) {
	for _, meta := range accounts {
		if !meta.Writable {
			continue
		}
		data, err := c.fetchRaw(ctx, meta.Address)
		if err == nil {
			err = upsertMirror(ctx, c.mirror, port.RawAccount{Address: meta.Address, Data: data})
		}
		if err != nil {
			c.log.WarnContext(ctx, "mirror refresh failed",
				slog.String("address", meta.Address.String()),
				slog.Any("error", err),
			)
		}
	}
}

// registerSub tracks a subscription cancel so CloseAll can tear it down.
// The returned unregister is called by the subscription's own cancel.
func (c *Client) registerSub(cancel func()) (id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id = c.nextSub
	c.nextSub++
	c.subs[id] = cancel
	return id
}

func (c *Client) unregisterSub(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, id)
}

// CloseAll cancels every subscription opened through this client. Safe to
// call more than once and concurrently with new OnChange calls.
func (c *Client) CloseAll() {
	c.mu.Lock()
	cancels := make([]func(), 0, len(c.subs))
	for _, cancel := range c.subs {
		cancels = append(cancels, cancel)
	}
	c.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// fetchRaw reads account data through the cache.
func (c *Client) fetchRaw(ctx context.Context, address domain.Address) ([]byte, error) {
	if data, ok := c.cache.Get(address); ok {
		return data, nil
	}
	data, err := c.runtime.FetchAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	c.cache.Put(address, data)
	return data, nil
}

func signer(address domain.Address) port.AccountMeta {
	return port.AccountMeta{Address: address, Signer: true, Writable: true}
}

func writable(address domain.Address) port.AccountMeta {
	return port.AccountMeta{Address: address, Writable: true}
}
