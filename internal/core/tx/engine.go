package tx

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/settleng/goledgerd/internal/clock"
	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/events"
)

// TxResult is the outcome of submitting one transaction.
type TxResult struct {
	Result Result
	// Hash identifies the transaction whether or not it applied.
	Hash [32]byte
	// Applied reports whether state was committed.
	Applied bool
}

// Options configures an Engine. Zero-value fields get working defaults.
type Options struct {
	Clock  clock.Clock
	Sink   events.Sink
	Params *Params
	// SkipSignatureVerification disables signature checking. Tests use
	// it to submit unsigned transactions.
	SkipSignatureVerification bool
	Logger                    zerolog.Logger
}

// Engine applies transactions to a ledger view. Each transaction runs
// the full pipeline: stateless validation and signature check, then
// account and sequence checks, then the transactor's apply against a
// buffering state table that commits only on success. Applications are
// serialized; the view never sees a partial transaction.
type Engine struct {
	mu      sync.Mutex
	view    LedgerView
	clock   clock.Clock
	sink    events.Sink
	params  Params
	skipSig bool
	log     zerolog.Logger
}

func NewEngine(view LedgerView, opts Options) *Engine {
	e := &Engine{
		view:    view,
		clock:   opts.Clock,
		sink:    opts.Sink,
		params:  DefaultParams(),
		skipSig: opts.SkipSignatureVerification,
		log:     opts.Logger,
	}
	if e.clock == nil {
		e.clock = clock.SystemClock{}
	}
	if e.sink == nil {
		e.sink = events.NopSink{}
	}
	if opts.Params != nil {
		e.params = *opts.Params
	}
	return e
}

// Apply runs a transaction through the pipeline.
func (e *Engine) Apply(t Transaction) TxResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t == nil {
		return TxResult{Result: Malformed}
	}
	if r := e.preflight(t); !r.IsSuccess() {
		e.logResult(t, r)
		return TxResult{Result: r}
	}

	hash, err := Hash(t)
	if err != nil {
		return TxResult{Result: Internal}
	}

	table := NewApplyStateTable(e.view)
	acct, r := e.preclaim(t, table)
	if !r.IsSuccess() {
		e.logResult(t, r)
		return TxResult{Result: r, Hash: hash}
	}

	r = e.doApply(t, table, acct, hash)
	e.logResult(t, r)
	return TxResult{Result: r, Hash: hash, Applied: r.IsSuccess()}
}

// preflight performs the stateless checks.
func (e *Engine) preflight(t Transaction) Result {
	common := t.GetCommon()
	if err := common.Validate(); err != nil {
		return ResultFromError(err)
	}
	if TypeFromName(common.TransactionType) != t.TxType() {
		return Malformed
	}
	if !e.skipSig {
		if r := VerifySignature(t); !r.IsSuccess() {
			return r
		}
	}
	if err := t.Validate(); err != nil {
		return ResultFromError(err)
	}
	return Success
}

// preclaim loads the submitting account and enforces sequence replay
// protection.
func (e *Engine) preclaim(t Transaction, view LedgerView) (*sle.AccountRoot, Result) {
	common := t.GetCommon()
	id, err := common.AccountID()
	if err != nil {
		return nil, Malformed
	}
	data, err := view.Read(keylet.Account(id))
	if err != nil {
		return nil, Internal
	}
	if data == nil {
		return nil, NoAccount
	}
	var acct sle.AccountRoot
	if err := sle.Decode(data, &acct); err != nil {
		return nil, Internal
	}
	switch {
	case common.Sequence < acct.Sequence:
		return nil, PastSequence
	case common.Sequence > acct.Sequence:
		return nil, FutureSequence
	}
	return &acct, Success
}

func (e *Engine) doApply(t Transaction, table *ApplyStateTable, acct *sle.AccountRoot, hash [32]byte) Result {
	appliable, ok := t.(Appliable)
	if !ok {
		return Internal
	}

	ctx := &ApplyContext{
		View:      table,
		AccountID: acct.Account,
		Account:   acct,
		Sequence:  acct.Sequence,
		Params:    e.params,
		Now:       e.clock.Now(),
		TxHash:    hash,
	}
	acct.Sequence++

	r := appliable.Apply(ctx)
	if !r.IsSuccess() {
		return r
	}

	data, err := sle.Encode(acct)
	if err != nil {
		return Internal
	}
	if err := table.Update(keylet.Account(acct.Account), data); err != nil {
		return Internal
	}
	if err := table.Apply(); err != nil {
		e.log.Error().Err(err).
			Str("type", t.TxType().String()).
			Msg("apply rejected")
		return InvariantFailed
	}

	txHash := fmt.Sprintf("%X", hash[:])
	for _, ev := range ctx.PendingEvents() {
		e.sink.Emit(events.Event{
			Time:   ctx.Now,
			TxHash: txHash,
			Name:   ev.Name,
			Fields: ev.Fields,
		})
	}
	return Success
}

func (e *Engine) logResult(t Transaction, r Result) {
	evt := e.log.Debug()
	if !r.IsSuccess() {
		evt = e.log.Info()
	}
	evt.Str("type", t.TxType().String()).
		Str("account", t.GetCommon().Account).
		Str("result", r.String()).
		Msg("transaction processed")
}
