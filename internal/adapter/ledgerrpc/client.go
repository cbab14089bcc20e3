// Package ledgerrpc talks JSON-RPC to an adboard ledger node. It is the only
// package that knows the node's wire dialect; everything above it works with
// the runtime port and domain errors.
package ledgerrpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"adboard/internal/core/domain"
	"adboard/internal/core/port"
)

// Node error codes the client maps onto domain errors. Every other code is
// surfaced as a plain TransactionFailedError.
const (
	codeAccountNotFound  = -32004
	codeExecutionFailure = -32020
)

const defaultCallTimeout = 10 * time.Second

// Client implements port.LedgerRuntime against a node's HTTP and websocket
// endpoints.
type Client struct {
	rpcURL    string
	wsURL     string
	authToken string
	http      *http.Client
	log       *slog.Logger
	nextID    atomic.Int64
}

// Options configures optional client behaviour; the zero value is usable.
type Options struct {
	// AuthToken, when set, is sent as a bearer token on every HTTP call.
	AuthToken string
	// Timeout bounds each HTTP round trip. Defaults to 10s.
	Timeout time.Duration
	Logger  *slog.Logger
}

func New(rpcURL, wsURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultCallTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		rpcURL:    rpcURL,
		wsURL:     wsURL,
		authToken: opts.AuthToken,
		http:      &http.Client{Timeout: opts.Timeout},
		log:       opts.Logger.With(slog.String("component", "ledgerrpc")),
	}
}

var _ port.LedgerRuntime = (*Client)(nil)

type jsonRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

type jsonRPCResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      int64            `json:"id"`
	Result  json.RawMessage  `json:"result"`
	Error   *jsonRPCErrorObj `json:"error"`
}

type jsonRPCErrorObj struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// executionErrorData carries the runtime's diagnostic log lines on a failed
// instruction.
type executionErrorData struct {
	Logs []string `json:"logs"`
}

type accountMetaPayload struct {
	Address  string `json:"address"`
	Signer   bool   `json:"signer"`
	Writable bool   `json:"writable"`
}

type submitParams struct {
	Program   string               `json:"program"`
	Accounts  []accountMetaPayload `json:"accounts"`
	Data      string               `json:"data"`
	RequestID string               `json:"requestId,omitempty"`
}

type submitResult struct {
	Signature string   `json:"signature"`
	Logs      []string `json:"logs"`
}

type accountResult struct {
	Address string `json:"address"`
	Data    string `json:"data"`
}

// Submit executes one encoded instruction on the node. Runtime rejections
// come back as *domain.TransactionFailedError with the node's log lines
// attached so callers can see which on-ledger guard fired.
func (c *Client) Submit(ctx context.Context, ix port.Instruction) (port.TxResult, error) {
	params := submitParams{
		Program:   ix.Program.String(),
		Accounts:  make([]accountMetaPayload, 0, len(ix.Accounts)),
		Data:      base64.StdEncoding.EncodeToString(ix.Data),
		RequestID: ix.RequestID,
	}
	for _, meta := range ix.Accounts {
		params.Accounts = append(params.Accounts, accountMetaPayload{
			Address:  meta.Address.String(),
			Signer:   meta.Signer,
			Writable: meta.Writable,
		})
	}

	var result submitResult
	if err := c.call(ctx, "adboard_submitInstruction", []any{params}, &result); err != nil {
		return port.TxResult{}, submitError(ix.RequestID, err)
	}
	c.log.DebugContext(ctx, "instruction accepted",
		slog.String("signature", result.Signature),
		slog.String("request_id", ix.RequestID),
	)
	return port.TxResult{Signature: result.Signature, Logs: result.Logs}, nil
}

// FetchAccount reads one account's raw data.
func (c *Client) FetchAccount(ctx context.Context, address domain.Address) ([]byte, error) {
	var result accountResult
	err := c.call(ctx, "adboard_getAccount", []any{map[string]string{"address": address.String()}}, &result)
	if err != nil {
		var rpcErr *rpcError
		if errors.As(err, &rpcErr) && rpcErr.Code == codeAccountNotFound {
			return nil, &domain.AccountNotFoundError{Address: address}
		}
		return nil, fmt.Errorf("fetch account %s: %w", address, err)
	}
	data, err := base64.StdEncoding.DecodeString(result.Data)
	if err != nil {
		return nil, fmt.Errorf("fetch account %s: decode payload: %w", address, err)
	}
	return data, nil
}

// ListAccounts returns every program account of the given kind.
func (c *Client) ListAccounts(ctx context.Context, kind domain.AccountKind) ([]port.RawAccount, error) {
	var results []accountResult
	err := c.call(ctx, "adboard_listProgramAccounts", []any{map[string]string{"kind": kind.String()}}, &results)
	if err != nil {
		return nil, fmt.Errorf("list %s accounts: %w", kind, err)
	}
	accounts := make([]port.RawAccount, 0, len(results))
	for _, r := range results {
		address, err := domain.ParseAddress(r.Address)
		if err != nil {
			return nil, fmt.Errorf("list %s accounts: %w", kind, err)
		}
		data, err := base64.StdEncoding.DecodeString(r.Data)
		if err != nil {
			return nil, fmt.Errorf("list %s accounts: decode %s: %w", kind, r.Address, err)
		}
		accounts = append(accounts, port.RawAccount{Address: address, Data: data})
	}
	return accounts, nil
}

// rpcError is a structured node-side rejection, kept distinct from transport
// failures so callers can branch on the code.
type rpcError struct {
	Code    int
	Message string
	Data    json.RawMessage
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("node rpc error %d: %s", e.Code, e.Message)
}

// submitError maps a call failure to the domain taxonomy: execution failures
// carry the runtime's logs, everything else wraps as-is.
func submitError(requestID string, err error) error {
	var rpcErr *rpcError
	if errors.As(err, &rpcErr) && rpcErr.Code == codeExecutionFailure {
		var data executionErrorData
		_ = json.Unmarshal(rpcErr.Data, &data)
		return &domain.TransactionFailedError{
			Op:   "submit " + requestID,
			Logs: data.Logs,
			Err:  errors.New(rpcErr.Message),
		}
	}
	return &domain.TransactionFailedError{Op: "submit " + requestID, Err: err}
}

func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	id := c.nextID.Add(1)
	buf, err := json.Marshal(jsonRPCRequest{JSONRPC: "2.0", Method: method, Params: params, ID: id})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(c.authToken) != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("node rpc %s: status=%d body=%s", method, resp.StatusCode, string(body))
	}
	var rpcResp jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return err
	}
	if rpcResp.Error != nil {
		return &rpcError{Code: rpcResp.Error.Code, Message: rpcResp.Error.Message, Data: rpcResp.Error.Data}
	}
	if out == nil {
		return nil
	}
	if len(rpcResp.Result) == 0 {
		return errors.New("node rpc returned empty result")
	}
	return json.Unmarshal(rpcResp.Result, out)
}
