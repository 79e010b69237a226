// Package executor drives a payer through one payment link: collecting
// input, review, and a single settlement attempt on the chosen rail.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vitwit/paylink/chains"
	"github.com/vitwit/paylink/form"
	"github.com/vitwit/paylink/logger"
	"github.com/vitwit/paylink/metrics"
	"github.com/vitwit/paylink/recorder"
	"github.com/vitwit/paylink/settlement"
	"github.com/vitwit/paylink/types"
	"github.com/vitwit/paylink/wallet"
)

var (
	ErrBusy              = errors.New("executor: another operation is in flight")
	ErrInvalidTransition = errors.New("executor: invalid transition")
)

const defaultRecordTimeout = 10 * time.Second

// Executor is the payment state machine for one link. Methods are safe for
// concurrent use; Pay, ConnectWallet and SelectNetwork share a single busy
// flag so network changes never overlap a submission.
type Executor struct {
	desc     *types.PaymentLinkDescriptor
	form     *form.State
	chains   *chains.Registry
	wallet   wallet.Capability
	settler  settlement.Settler
	tokens   settlement.TokenSource
	recorder recorder.Recorder
	log      logger.Logger
	metrics  metrics.Recorder

	defaultPayee  string
	recordTimeout time.Duration
	newID         func() string
	now           func() time.Time

	busy    atomic.Bool
	mu      sync.Mutex
	state   State
	last    *Attempt
	records sync.WaitGroup
}

type Option func(*Executor)

func WithChains(r *chains.Registry) Option {
	return func(e *Executor) {
		e.chains = r
	}
}

func WithWallet(w wallet.Capability) Option {
	return func(e *Executor) {
		e.wallet = w
	}
}

func WithSettler(s settlement.Settler) Option {
	return func(e *Executor) {
		e.settler = s
	}
}

func WithTokenSource(t settlement.TokenSource) Option {
	return func(e *Executor) {
		e.tokens = t
	}
}

func WithRecorder(r recorder.Recorder) Option {
	return func(e *Executor) {
		e.recorder = r
	}
}

func WithLogger(l logger.Logger) Option {
	return func(e *Executor) {
		e.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(e *Executor) {
		e.metrics = r
	}
}

// WithDefaultPayee sets the payee for links that do not name one.
func WithDefaultPayee(addr string) Option {
	return func(e *Executor) {
		e.defaultPayee = addr
	}
}

// WithRecordTimeout bounds the background record call.
func WithRecordTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.recordTimeout = d
	}
}

// WithIDGenerator overrides attempt id generation.
func WithIDGenerator(f func() string) Option {
	return func(e *Executor) {
		e.newID = f
	}
}

// New creates an executor in the Collecting state for desc. f must have
// been created for the same descriptor.
func New(desc *types.PaymentLinkDescriptor, f *form.State, opts ...Option) *Executor {
	e := &Executor{
		desc:          desc,
		form:          f,
		chains:        chains.Default(),
		recorder:      recorder.NoopRecorder{},
		log:           logger.NoopLogger{},
		metrics:       metrics.NoopRecorder{},
		recordTimeout: defaultRecordTimeout,
		newID:         uuid.NewString,
		now:           time.Now,
		state:         Collecting,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) Descriptor() *types.PaymentLinkDescriptor {
	return e.desc
}

func (e *Executor) Form() *form.State {
	return e.form
}

func (e *Executor) Chains() *chains.Registry {
	return e.chains
}

func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Busy reports whether a guarded operation is running.
func (e *Executor) Busy() bool {
	return e.busy.Load()
}

// LastAttempt returns a copy of the most recent attempt, or nil.
func (e *Executor) LastAttempt() *Attempt {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return nil
	}
	return e.last.clone()
}

// Proceed moves Collecting to Reviewing when the form is valid. On a
// validation failure the state is unchanged and the VALIDATION_ERROR is
// returned.
func (e *Executor) Proceed() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Collecting {
		return fmt.Errorf("%w: proceed from %s", ErrInvalidTransition, e.state)
	}
	if err := e.form.Validate(); err != nil {
		return err
	}
	e.state = Reviewing
	return nil
}

// Back returns from Reviewing to Collecting.
func (e *Executor) Back() error {
	if e.busy.Load() {
		return ErrBusy
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Reviewing {
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, e.state)
	}
	e.state = Collecting
	return nil
}

// ConnectWallet runs the wallet's connect handshake.
func (e *Executor) ConnectWallet(ctx context.Context) (wallet.ConnectOutcome, error) {
	if e.wallet == nil {
		return 0, types.NewError(types.ErrWalletUnavailable, "no wallet available", wallet.ErrNoProviderAvailable)
	}
	if !e.busy.CompareAndSwap(false, true) {
		return 0, ErrBusy
	}
	defer e.busy.Store(false)

	outcome, err := e.wallet.Connect(ctx)
	if err != nil {
		return 0, types.NewError(types.ErrWalletUnavailable, "wallet connection failed", err)
	}
	e.log.Info("wallet connected", map[string]any{"linkId": e.desc.ID, "outcome": outcome.String()})
	return outcome, nil
}

// SelectNetwork asks a connected wallet to switch to chainID and records it
// on the form once the wallet is there. Without a connected wallet the
// choice is recorded directly. A failed switch leaves the form unchanged.
func (e *Executor) SelectNetwork(ctx context.Context, chainID uint64) error {
	if !e.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer e.busy.Store(false)

	chain, err := e.chains.Describe(chainID)
	if err != nil {
		return err
	}
	if e.wallet != nil && e.wallet.IsConnected() {
		if err := e.negotiate(ctx, chain); err != nil {
			return err
		}
	}
	return e.form.SelectChain(chainID)
}

// Pay runs one attempt on the rail currently selected in the form. The
// returned attempt is non-nil whenever Submitting was entered; err is the
// attempt's failure, if any.
func (e *Executor) Pay(ctx context.Context) (*Attempt, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer e.busy.Store(false)

	e.mu.Lock()
	if e.state != Reviewing {
		state := e.state
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: pay from %s", ErrInvalidTransition, state)
	}
	e.state = Submitting
	e.mu.Unlock()

	e.form.Freeze()
	sub := e.form.Snapshot()

	a := &Attempt{
		ID:         e.newID(),
		LinkID:     e.desc.ID,
		Rail:       sub.Rail,
		Status:     Submitting,
		Submission: sub,
		StartedAt:  e.now(),
	}

	var err error
	if err = e.form.Validate(); err == nil {
		switch sub.Rail {
		case types.RailOnChain:
			err = e.payOnChain(ctx, a)
		case types.RailBackend:
			err = e.payBackend(ctx, a)
		default:
			err = types.Errorf(types.ErrValidation, "unknown payment rail %q", sub.Rail)
		}
	}

	return e.finish(a, err), err
}

func (e *Executor) finish(a *Attempt, err error) *Attempt {
	a.FinishedAt = e.now()
	labels := map[string]string{"rail": string(a.Rail)}
	e.metrics.ObserveLatency(metrics.OpPay, a.Duration(), labels)

	e.mu.Lock()
	if err != nil {
		a.Status = Failed
		a.Err = err
		if types.CodeOf(err) == types.ErrValidation {
			e.state = Collecting
		} else {
			e.state = Reviewing
		}
	} else {
		a.Status = Succeeded
		e.state = Succeeded
	}
	e.last = a
	out := a.clone()
	e.mu.Unlock()

	if err != nil {
		e.form.Unfreeze()
		e.metrics.IncCounter(metrics.EventPayment, map[string]string{"rail": string(a.Rail), "outcome": "failed"})
		e.log.Warn("payment failed", map[string]any{
			"linkId":    a.LinkID,
			"attemptId": a.ID,
			"rail":      string(a.Rail),
			"code":      a.Code(),
			"error":     err,
		})
		return out
	}

	e.metrics.IncCounter(metrics.EventPayment, map[string]string{"rail": string(a.Rail), "outcome": "succeeded"})
	e.log.Info("payment succeeded", map[string]any{
		"linkId":    a.LinkID,
		"attemptId": a.ID,
		"rail":      string(a.Rail),
		"reference": a.Reference(),
	})
	e.record(a)
	return out
}

// record fires the single best-effort record call for a successful attempt.
func (e *Executor) record(a *Attempt) {
	rec := buildRecord(a)
	key := a.ID
	rail := string(a.Rail)

	e.records.Add(1)
	go func() {
		defer e.records.Done()

		ctx, cancel := context.WithTimeout(context.Background(), e.recordTimeout)
		defer cancel()

		start := time.Now()
		err := e.recorder.Record(ctx, key, rec)
		e.metrics.ObserveLatency(metrics.OpRecord, time.Since(start), map[string]string{"rail": rail})
		if err != nil {
			e.metrics.IncCounter(metrics.EventRecord, map[string]string{"rail": rail, "outcome": "failed"})
			e.log.Warn("transaction record failed", map[string]any{
				"linkId":    rec.LinkID,
				"attemptId": key,
				"code":      types.ErrRecording,
				"error":     err,
			})
			return
		}
		e.metrics.IncCounter(metrics.EventRecord, map[string]string{"rail": rail, "outcome": "succeeded"})
	}()
}

// Wait blocks until every pending record call has returned.
func (e *Executor) Wait() {
	e.records.Wait()
}

func buildRecord(a *Attempt) *types.TransactionRecord {
	sub := a.Submission
	rec := &types.TransactionRecord{
		LinkID:       a.LinkID,
		Rail:         a.Rail,
		Amount:       sub.Amount,
		PayerName:    sub.PayerName,
		PayerEmail:   sub.PayerEmail,
		CustomFields: sub.Clone().CustomFields,
		Memo:         "Payment via link " + a.LinkID,
	}

	if o := a.OnChain; o != nil {
		rec.Status = types.StatusConfirmed
		rec.TxHash = o.TxHash.Hex()
		rec.From = o.From.Hex()
		rec.To = o.To.Hex()
		rec.Network = o.Network
		rec.BlockNumber = o.BlockNumber
		rec.GasUsed = fmt.Sprintf("%d", o.GasUsed)
		rec.GasPrice = o.GasPriceString()
	}
	if r := a.Receipt; r != nil {
		rec.Status = types.StatusSettled
		rec.ReceiptID = r.ID
		if r.Amount != "" {
			rec.Amount = r.Amount
		}
	}
	return rec
}
