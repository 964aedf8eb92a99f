package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/runtime"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/store/iavl"
	"github.com/iov-one/custody/x/escrow"
)

func cmdRun(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Execute a YAML scenario against a local ledger and print the receipt of every
step followed by the final balances.

Every step is a single signed transaction. A step that does not end the way it
declares (see the "fails" attribute) stops the run with an error.
`)
		fl.PrintDefaults()
	}
	var (
		fileFl     = fl.String("file", "", "Path to the scenario file. The scenario is read from the input if not given.")
		dbFl       = fl.String("db", env("ESCROWCLI_DB", ""), "Directory of a persistent ledger. An in-memory ledger is used if not given. You can use ESCROWCLI_DB environment variable to set it.")
		logLevelFl = fl.String("log-level", "none", "Level of the runtime logs written to stderr: debug, info, error or none.")
		metricsFl  = fl.Bool("metrics", false, "Print runtime counters after the run.")
		debugFl    = fl.Bool("debug", false, "Include full error details in receipts.")
	)
	fl.Parse(args)

	sc, err := readScenario(input, *fileFl)
	if err != nil {
		return err
	}
	logger, err := newLogger(*logLevelFl)
	if err != nil {
		return err
	}
	l, err := openLedger(*dbFl)
	if err != nil {
		return err
	}
	defer l.close()

	rt := runtime.New(l.kv).WithLogger(logger).WithDebug(*debugFl)
	rt.Register(escrow.ProgramID, escrow.Program{})

	var reg *prometheus.Registry
	if *metricsFl {
		reg = prometheus.NewRegistry()
		metrics, err := runtime.NewMetrics(reg)
		if err != nil {
			return fmt.Errorf("cannot register metrics: %s", err)
		}
		rt.WithMetrics(metrics)
	}

	p := newParties(escrow.ProgramID, sc.Accounts)
	if l.version == 0 {
		if err := initGenesis(rt, p, sc); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(output, "ledger at version %d, genesis skipped\n", l.version)
	}

	ctx := context.Background()
	for i, s := range sc.Steps {
		ix, signers, err := p.instruction(s)
		if err != nil {
			return fmt.Errorf("step %d: %s", i+1, err)
		}
		nonce, err := nextNonce(rt, signers)
		if err != nil {
			return fmt.Errorf("step %d: %s", i+1, err)
		}
		tx := runtime.NewTransaction(nonce, ix)
		if err := tx.Sign(signers...); err != nil {
			return fmt.Errorf("step %d: cannot sign: %s", i+1, err)
		}
		res, err := rt.Execute(ctx, tx)
		if res.Code == 0 {
			fmt.Fprintf(output, "%d %s: ok\n", i+1, s)
		} else {
			fmt.Fprintf(output, "%d %s: code %d: %s\n", i+1, s, res.Code, res.Log)
		}
		for _, line := range res.ProgramLogs {
			fmt.Fprintf(output, "\t%s\n", line)
		}
		if failed := err != nil; failed != s.Fails {
			return fmt.Errorf("step %d: expected failure %v, got %v", i+1, s.Fails, failed)
		}
	}

	if err := writeBalances(output, rt, p, sc); err != nil {
		return err
	}
	if l.commit != nil {
		id, err := l.commit.Commit()
		if err != nil {
			return fmt.Errorf("cannot commit: %s", err)
		}
		fmt.Fprintf(output, "committed version %d hash %X\n", id.Version, id.Hash)
	}
	if reg != nil {
		return writeMetrics(output, reg)
	}
	return nil
}

// newLogger returns a stderr logger that lets through messages of the given
// level and above.
func newLogger(level string) (log.Logger, error) {
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", err)
	}
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr)).With("module", "escrowcli")
	return log.NewFilter(logger, opt), nil
}

// ledger is the store a scenario runs against.
type ledger struct {
	kv      store.CacheableKVStore
	commit  *iavl.CommitStore
	version int64
}

func openLedger(dir string) (*ledger, error) {
	if dir == "" {
		return &ledger{kv: store.MemStore()}, nil
	}
	cs, err := iavl.NewCommitStore(dir, "ledger")
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger: %s", err)
	}
	if err := cs.LoadLatestVersion(); err != nil {
		cs.Close()
		return nil, fmt.Errorf("cannot load ledger: %s", err)
	}
	id, err := cs.LatestVersion()
	if err != nil {
		cs.Close()
		return nil, fmt.Errorf("cannot load ledger: %s", err)
	}
	return &ledger{kv: cs.Adapter(), commit: &cs, version: id.Version}, nil
}

func (l *ledger) close() {
	if l.commit != nil {
		l.commit.Close()
	}
}

func initGenesis(rt *runtime.Runtime, p *parties, sc *scenario) error {
	opts := runtime.Options{}
	if sc.Rent != nil {
		raw, err := json.Marshal(custody.Rent{
			LamportsPerByteYear: sc.Rent.LamportsPerByteYear,
			ExemptionThreshold:  sc.Rent.ExemptionThreshold,
		})
		if err != nil {
			return err
		}
		opts["rent"] = raw
	}

	accounts := make([]runtime.GenesisAccount, 0, len(sc.Accounts))
	for _, a := range sc.Accounts {
		pub, err := p.pubkey(a.Name)
		if err != nil {
			return err
		}
		accounts = append(accounts, runtime.GenesisAccount{Pubkey: pub, Lamports: a.Lamports})
	}
	raw, err := json.Marshal(accounts)
	if err != nil {
		return err
	}
	opts["accounts"] = raw

	if err := rt.InitGenesis(opts); err != nil {
		return fmt.Errorf("cannot load genesis: %s", err)
	}
	return nil
}

// nextNonce returns the lowest nonce accepted from all signers.
func nextNonce(rt *runtime.Runtime, signers []crypto.Signer) (uint64, error) {
	var last uint64
	for _, s := range signers {
		seq, err := rt.Sequence(s.PublicKey())
		if err != nil {
			return 0, err
		}
		if seq > last {
			last = seq
		}
	}
	return last + 1, nil
}

// writeBalances prints every named party followed by the escrow accounts
// opened during the run, each group sorted by name, and a summary of all
// accounts held by the escrow program.
func writeBalances(output io.Writer, rt *runtime.Runtime, p *parties, sc *scenario) error {
	names := make([]string, 0, len(p.keys))
	for name := range p.keys {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		acc, err := rt.Account(p.keys[name].PublicKey())
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "%s %s %d\n", name, acc.Key, acc.Lamports)
	}

	initializers := make([]string, 0, len(p.escrows))
	for name := range p.escrows {
		initializers = append(initializers, name)
	}
	sort.Strings(initializers)
	for _, name := range initializers {
		acc, err := rt.Account(p.escrows[name])
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "escrow(%s) %s %d\n", name, acc.Key, acc.Lamports)
	}

	owned, err := rt.AccountsByOwner(escrow.ProgramID)
	if err != nil {
		return err
	}
	var locked uint64
	for _, acc := range owned {
		locked += acc.Lamports
	}
	fmt.Fprintf(output, "program accounts %d lamports %d\n", len(owned), locked)
	return nil
}

// writeMetrics prints counters and histogram sample counts gathered from reg.
func writeMetrics(output io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("cannot gather metrics: %s", err)
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			fmt.Fprintf(output, "%s{%s} %v\n", f.GetName(), strings.Join(labels, ","), value)
		}
	}
	return nil
}
