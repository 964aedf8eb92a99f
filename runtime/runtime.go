package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/system"
)

// Receipt is the outcome of a transaction.
type Receipt struct {
	// Code is zero on success, otherwise the code of the root error.
	Code uint32
	Log  string
	// ProgramLogs holds the messages emitted by programs, in order.
	ProgramLogs []string
}

// Runtime executes transactions against a store. It is safe for concurrent
// use, transactions are executed one at a time.
type Runtime struct {
	mu       sync.Mutex
	kv       store.CacheableKVStore
	programs map[custody.Pubkey]custody.Program
	logger   log.Logger
	metrics  *Metrics
	debug    bool
}

// New returns a runtime over kv with the system program registered.
func New(kv store.CacheableKVStore) *Runtime {
	rt := &Runtime{
		kv:       kv,
		programs: make(map[custody.Pubkey]custody.Program),
		logger:   log.NewNopLogger(),
	}
	rt.Register(custody.SystemProgramID, system.Program{})
	return rt
}

// WithLogger sets the logger used for the runtime and passed to programs.
func (r *Runtime) WithLogger(logger log.Logger) *Runtime {
	r.logger = logger.With("module", "runtime")
	return r
}

// WithMetrics enables collection of execution metrics.
func (r *Runtime) WithMetrics(m *Metrics) *Runtime {
	r.metrics = m
	return r
}

// WithDebug makes receipts carry full error information instead of the
// redacted form.
func (r *Runtime) WithDebug(debug bool) *Runtime {
	r.debug = debug
	return r
}

// Register adds a program under the given id. Registering an id twice
// panics.
func (r *Runtime) Register(id custody.Pubkey, p custody.Program) {
	if _, ok := r.programs[id]; ok {
		panic("program already registered: " + id.String())
	}
	r.programs[id] = p
}

func (r *Runtime) program(id custody.Pubkey) (custody.Program, error) {
	p, ok := r.programs[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownProgram, "program %s", id)
	}
	return p, nil
}

// Account returns the current state of an account. Unknown accounts are
// returned as empty system accounts.
func (r *Runtime) Account(key custody.Pubkey) (*custody.AccountInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return loadAccount(r.kv, key)
}

// AccountsByOwner returns every stored account owned by the given program,
// ordered by key.
func (r *Runtime) AccountsByOwner(owner custody.Pubkey) ([]*custody.AccountInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return accountsByOwner(r.kv, owner)
}

// Sequence returns the last nonce used by a signer, zero if it never signed.
func (r *Runtime) Sequence(key custody.Pubkey) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return loadSequence(r.kv, key)
}

// Rent returns the rent parameters of the ledger.
func (r *Runtime) Rent() (custody.Rent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return loadRent(r.kv)
}

// Execute verifies and runs a transaction. All instructions are applied or
// none is. The receipt is returned for failed transactions too, together
// with the error.
func (r *Runtime) Execute(ctx context.Context, tx *Transaction) (*Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	pl := &custody.ProgramLog{}
	ctx = custody.WithProgramLog(custody.WithLogger(ctx, r.logger), pl)

	err := r.execute(ctx, tx)

	code, msg := errors.Result(err, r.debug)
	res := &Receipt{Code: code, Log: msg, ProgramLogs: pl.Lines()}
	r.metrics.observe(code, time.Since(start))
	logDuration(r.logger, start, tx, err)
	return res, err
}

func (r *Runtime) execute(ctx context.Context, tx *Transaction) error {
	signers, err := tx.signers()
	if err != nil {
		return err
	}
	rent, err := loadRent(r.kv)
	if err != nil {
		return err
	}
	return savepoint(r.kv, func(kv store.KVStore) error {
		if err := checkAndIncrementSequence(kv, signers, tx.Nonce); err != nil {
			return err
		}
		for i, ix := range tx.Instructions {
			if err := r.executeInstruction(ctx, kv, rent, signers, ix); err != nil {
				return errors.Wrapf(err, "instruction %d", i)
			}
		}
		return nil
	})
}

// checkAndIncrementSequence requires the nonce to be above the last nonce of
// every signer and records it as their new sequence. Gaps are allowed so that
// signers with different histories can sign one transaction.
func checkAndIncrementSequence(kv store.KVStore, signers map[custody.Pubkey]bool, nonce uint64) error {
	for key := range signers {
		seq, err := loadSequence(kv, key)
		if err != nil {
			return err
		}
		if nonce <= seq {
			return errors.Wrapf(errors.ErrInvalidSequence, "signer %s: nonce %d, last %d", key, nonce, seq)
		}
		if err := saveSequence(kv, key, nonce); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) executeInstruction(ctx context.Context, kv store.KVStore, rent custody.Rent, signers map[custody.Pubkey]bool, ix custody.Instruction) error {
	prog, err := r.program(ix.ProgramID)
	if err != nil {
		return err
	}

	byKey := make(map[custody.Pubkey]*custody.AccountInfo, len(ix.Accounts))
	var unique []*custody.AccountInfo
	accounts := make([]*custody.AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		if meta.IsSigner && !signers[meta.Pubkey] {
			return errors.Wrapf(errors.ErrMissingRequiredSignature, "account %s", meta.Pubkey)
		}
		acc, ok := byKey[meta.Pubkey]
		if !ok {
			acc, err = loadAccount(kv, meta.Pubkey)
			if err != nil {
				return err
			}
			byKey[meta.Pubkey] = acc
			unique = append(unique, acc)
		}
		acc.IsSigner = acc.IsSigner || meta.IsSigner
		acc.IsWritable = acc.IsWritable || meta.IsWritable
		accounts[i] = acc
	}

	keys := make([]custody.Pubkey, len(unique))
	for i, acc := range unique {
		keys[i] = acc.Key
	}

	ctx = custody.WithLogInfo(ctx, "program", ix.ProgramID)
	if err := r.run(ctx, prog, ix.ProgramID, accounts, unique, ix.Data, rent, 1); err != nil {
		return err
	}

	for i, acc := range unique {
		if !acc.IsWritable {
			continue
		}
		if err := saveAccount(kv, keys[i], acc); err != nil {
			return err
		}
	}
	return nil
}

// run calls the program and verifies what it did to the accounts.
func (r *Runtime) run(ctx context.Context, prog custody.Program, programID custody.Pubkey, accounts, unique []*custody.AccountInfo, data []byte, rent custody.Rent, depth int) (err error) {
	h := &host{
		rt:        r,
		rent:      rent,
		programID: programID,
		accounts:  unique,
		pre:       snapshot(unique),
		depth:     depth,
	}
	r.metrics.instruction(programID)

	func() {
		defer errors.Recover(&err)
		err = prog.Process(ctx, h, programID, accounts, data)
	}()
	if err != nil {
		return err
	}
	return verifyAll(programID, h.pre, unique)
}

// logDuration writes information about the time and result to the logger
func logDuration(logger log.Logger, start time.Time, tx *Transaction, err error) {
	delta := time.Since(start)
	logger = logger.With("duration", delta/time.Microsecond, "instructions", len(tx.Instructions))
	if err != nil {
		logger.Error("transaction failed", "err", err)
		return
	}
	logger.Info("transaction executed")
}
