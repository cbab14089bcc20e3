package service

import (
	"context"
	"log/slog"
	"time"

	"adboard/internal/codec"
	"adboard/internal/core/domain"
	"adboard/internal/core/port"
	"adboard/internal/observability"
)

// Syncer periodically copies ledger account state into the relational
// mirror. The mirror is strictly derived data: a failed pass only delays
// convergence, and every upsert is idempotent, so passes can overlap
// restarts without coordination.
type Syncer struct {
	runtime  port.LedgerRuntime
	mirror   port.MirrorStore
	log      *slog.Logger
	interval time.Duration
}

func NewSyncer(runtime port.LedgerRuntime, mirror port.MirrorStore, interval time.Duration, log *slog.Logger) *Syncer {
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{
		runtime:  runtime,
		mirror:   mirror,
		log:      log.With(slog.String("component", "mirror-syncer")),
		interval: interval,
	}
}

// Run blocks until ctx is cancelled, syncing every account kind once per
// interval. The first pass starts immediately.
func (s *Syncer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.SyncOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SyncOnce runs a single pass over all account kinds. Errors are logged and
// counted, not returned: one unreachable kind must not stall the others.
func (s *Syncer) SyncOnce(ctx context.Context) {
	for _, kind := range []domain.AccountKind{
		domain.KindAdvertiser,
		domain.KindProvider,
		domain.KindCampaign,
		domain.KindLocation,
		domain.KindBooking,
	} {
		start := time.Now()
		err := s.syncKind(ctx, kind)
		observability.TrackMirrorSync(kind.String(), time.Since(start), err)
		if err != nil {
			s.log.WarnContext(ctx, "mirror sync pass failed",
				slog.String("kind", kind.String()),
				slog.Any("error", err),
			)
		}
	}
}

func (s *Syncer) syncKind(ctx context.Context, kind domain.AccountKind) error {
	raws, err := s.runtime.ListAccounts(ctx, kind)
	if err != nil {
		return err
	}
	for _, raw := range raws {
		if err := s.upsert(ctx, kind, raw); err != nil {
			return err
		}
	}
	s.log.DebugContext(ctx, "mirror sync pass complete",
		slog.String("kind", kind.String()),
		slog.Int("accounts", len(raws)),
	)
	return nil
}

func (s *Syncer) upsert(ctx context.Context, kind domain.AccountKind, raw port.RawAccount) error {
	got, ok := codec.PayloadKind(raw.Data)
	if !ok || got != kind {
		return &domain.ValidationError{Field: "kind", Reason: "account payload does not match the listed kind"}
	}
	return upsertMirror(ctx, s.mirror, raw)
}

// upsertMirror dispatches one raw account to the matching mirror upsert by
// its payload discriminator.
func upsertMirror(ctx context.Context, mirror port.MirrorStore, raw port.RawAccount) error {
	kind, ok := codec.PayloadKind(raw.Data)
	if !ok {
		return &domain.ValidationError{Field: "kind", Reason: "unknown account payload"}
	}
	switch kind {
	case domain.KindAdvertiser:
		a, err := codec.DecodeAdvertiser(raw.Data)
		if err != nil {
			return err
		}
		return mirror.UpsertAdvertiser(ctx, raw.Address, a)
	case domain.KindProvider:
		p, err := codec.DecodeProvider(raw.Data)
		if err != nil {
			return err
		}
		return mirror.UpsertProvider(ctx, raw.Address, p)
	case domain.KindCampaign:
		c, err := codec.DecodeCampaign(raw.Data)
		if err != nil {
			return err
		}
		return mirror.UpsertCampaign(ctx, raw.Address, c)
	case domain.KindLocation:
		l, err := codec.DecodeLocation(raw.Data)
		if err != nil {
			return err
		}
		return mirror.UpsertLocation(ctx, raw.Address, l)
	default:
		b, err := codec.DecodeBooking(raw.Data)
		if err != nil {
			return err
		}
		return mirror.UpsertBooking(ctx, raw.Address, b)
	}
}
