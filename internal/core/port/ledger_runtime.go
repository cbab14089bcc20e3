package port

import (
	"context"

	"adboard/internal/core/domain"
)

// AccountMeta names an account touched by an instruction and how it is
// accessed.
type AccountMeta struct {
	Address  domain.Address
	Signer   bool
	Writable bool
}

// Instruction is a fully derived, encoded request for the ledger runtime.
// The runtime signs and executes it; the accounting core never submits an
// instruction it already knows would violate its own invariants. RequestID
// is a client-generated idempotency token carried through logs and metrics.
type Instruction struct {
	Program   domain.Address
	Accounts  []AccountMeta
	Data      []byte
	RequestID string
}

// TxResult reports a successfully executed instruction.
type TxResult struct {
	Signature string
	Logs      []string
}

// RawAccount is an account address with its undecoded data.
type RawAccount struct {
	Address domain.Address
	Data    []byte
}

// AccountUpdate is one change notification for a subscribed account.
type AccountUpdate struct {
	Address domain.Address
	Data    []byte
	Slot    uint64
}

// Subscription is a long-lived stream of account changes. Updates is closed
// after Cancel or when the stream fails; Err reports the terminal error, if
// any, once Updates is closed. Cancel is idempotent and must not leak the
// underlying stream.
type Subscription interface {
	Updates() <-chan AccountUpdate
	Err() error
	Cancel()
}

// LedgerRuntime is the outbound port to the ledger node. It is the sole
// serialization point for state changes: all precondition guards are
// re-evaluated atomically by the runtime, not by client-side locking.
// Implementations must be safe for concurrent use.
type LedgerRuntime interface {
	// Submit executes an instruction. Runtime rejections surface as
	// *domain.TransactionFailedError with any diagnostic logs attached.
	Submit(ctx context.Context, ix Instruction) (TxResult, error)
	// FetchAccount reads one account's raw data. A missing account is
	// reported as *domain.AccountNotFoundError.
	FetchAccount(ctx context.Context, address domain.Address) ([]byte, error)
	// ListAccounts returns every program account of the given kind. Each
	// returned snapshot is independent; state may change between a list
	// and a subsequent fetch.
	ListAccounts(ctx context.Context, kind domain.AccountKind) ([]RawAccount, error)
	// SubscribeAccount opens a change stream for one account. Multiple
	// subscriptions to the same account are independent.
	SubscribeAccount(ctx context.Context, address domain.Address) (Subscription, error)
}
