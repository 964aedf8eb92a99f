package main

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/system"
	"github.com/iov-one/custody/x/escrow"
)

// scenario is a list of steps executed against a ledger that starts with the
// given accounts.
//
//   rent:
//     lamports_per_byte_year: 3480
//     exemption_threshold_years: 2
//   accounts:
//     - name: alice
//       lamports: 10000000
//   steps:
//     - op: initialize
//       initializer: alice
//       taker: bob
//       amount: 1000
//     - op: withdraw
//       initializer: alice
//       taker: bob
//       fails: true
type scenario struct {
	Rent     *scenarioRent     `yaml:"rent"`
	Accounts []scenarioAccount `yaml:"accounts"`
	Steps    []scenarioStep    `yaml:"steps"`
}

type scenarioRent struct {
	LamportsPerByteYear uint64 `yaml:"lamports_per_byte_year"`
	ExemptionThreshold  uint64 `yaml:"exemption_threshold_years"`
}

// scenarioAccount is a named party. Its key is recovered from the mnemonic
// when one is given, otherwise it is derived from the name.
type scenarioAccount struct {
	Name     string `yaml:"name"`
	Lamports uint64 `yaml:"lamports"`
	Mnemonic string `yaml:"mnemonic"`
}

type scenarioStep struct {
	Op          string `yaml:"op"`
	Initializer string `yaml:"initializer"`
	Taker       string `yaml:"taker"`
	From        string `yaml:"from"`
	To          string `yaml:"to"`
	Amount      uint64 `yaml:"amount"`
	Seed        *uint8 `yaml:"seed"`
	// Signers replaces the parties that sign the step by default.
	Signers []string `yaml:"signers"`
	// Fails declares that the step is expected to be rejected.
	Fails bool `yaml:"fails"`
}

func (s scenarioStep) String() string {
	switch s.Op {
	case "initialize":
		return fmt.Sprintf("initialize %s -> %s %d", s.Initializer, s.Taker, s.Amount)
	case "transfer":
		return fmt.Sprintf("transfer %s -> %s %d", s.From, s.To, s.Amount)
	default:
		return fmt.Sprintf("%s %s -> %s", s.Op, s.Initializer, s.Taker)
	}
}

// readScenario decodes a scenario from the file at path, or from input when
// path is empty.
func readScenario(input io.Reader, path string) (*scenario, error) {
	if path != "" {
		fd, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open scenario: %s", err)
		}
		defer fd.Close()
		input = fd
	}

	dec := yaml.NewDecoder(input)
	dec.KnownFields(true)
	var sc scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("cannot parse scenario: %s", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *scenario) validate() error {
	seen := make(map[string]bool)
	for _, a := range sc.Accounts {
		if a.Name == "" {
			return fmt.Errorf("account without a name")
		}
		if seen[a.Name] {
			return fmt.Errorf("account %q declared twice", a.Name)
		}
		seen[a.Name] = true
	}
	for i, s := range sc.Steps {
		switch s.Op {
		case "initialize", "deposit", "withdraw":
			if s.Initializer == "" || s.Taker == "" {
				return fmt.Errorf("step %d: %s requires initializer and taker", i+1, s.Op)
			}
		case "transfer":
			if s.From == "" || s.To == "" {
				return fmt.Errorf("step %d: transfer requires from and to", i+1)
			}
		default:
			return fmt.Errorf("step %d: unknown operation %q", i+1, s.Op)
		}
	}
	return nil
}

// parties resolves the names used in a scenario into keys and tracks the
// escrow accounts opened by each initializer.
type parties struct {
	programID custody.Pubkey
	mnemonics map[string]string
	keys      map[string]*crypto.PrivateKey
	escrows   map[string]custody.Pubkey
}

func newParties(programID custody.Pubkey, accounts []scenarioAccount) *parties {
	p := &parties{
		programID: programID,
		mnemonics: make(map[string]string),
		keys:      make(map[string]*crypto.PrivateKey),
		escrows:   make(map[string]custody.Pubkey),
	}
	for _, a := range accounts {
		if a.Mnemonic != "" {
			p.mnemonics[a.Name] = a.Mnemonic
		}
	}
	return p
}

func (p *parties) key(name string) (*crypto.PrivateKey, error) {
	if k, ok := p.keys[name]; ok {
		return k, nil
	}
	var (
		k   *crypto.PrivateKey
		err error
	)
	if m, ok := p.mnemonics[name]; ok {
		k, err = crypto.PrivKeyFromMnemonic(m, "")
	} else {
		seed := sha256.Sum256([]byte("escrowcli:" + name))
		k, err = crypto.PrivKeyEd25519FromSeed(seed[:])
	}
	if err != nil {
		return nil, fmt.Errorf("key of %q: %s", name, err)
	}
	p.keys[name] = k
	return k, nil
}

func (p *parties) pubkey(name string) (custody.Pubkey, error) {
	k, err := p.key(name)
	if err != nil {
		return custody.Pubkey{}, err
	}
	return k.PublicKey(), nil
}

// escrow returns the escrow address used by initializer.
func (p *parties) escrow(initializer string, seed *uint8) (custody.Pubkey, error) {
	if addr, ok := p.escrows[initializer]; ok && seed == nil {
		return addr, nil
	}
	pub, err := p.pubkey(initializer)
	if err != nil {
		return custody.Pubkey{}, err
	}
	addr, _, err := escrow.Address(p.programID, pub, seed)
	if err != nil {
		return custody.Pubkey{}, fmt.Errorf("escrow of %q: %s", initializer, err)
	}
	return addr, nil
}

// instruction builds the instruction of a step and lists who signs it.
func (p *parties) instruction(s scenarioStep) (custody.Instruction, []crypto.Signer, error) {
	var (
		ix      custody.Instruction
		signers []string
	)
	switch s.Op {
	case "transfer":
		from, err := p.pubkey(s.From)
		if err != nil {
			return ix, nil, err
		}
		to, err := p.pubkey(s.To)
		if err != nil {
			return ix, nil, err
		}
		ix = system.NewTransfer(from, to, s.Amount)
		signers = []string{s.From}
	default:
		initializer, err := p.pubkey(s.Initializer)
		if err != nil {
			return ix, nil, err
		}
		taker, err := p.pubkey(s.Taker)
		if err != nil {
			return ix, nil, err
		}
		switch s.Op {
		case "initialize":
			var addr custody.Pubkey
			ix, addr, err = escrow.NewInitialize(p.programID, initializer, taker, s.Amount, s.Seed)
			if err != nil {
				return ix, nil, fmt.Errorf("escrow of %q: %s", s.Initializer, err)
			}
			p.escrows[s.Initializer] = addr
			signers = []string{s.Initializer}
		case "deposit":
			addr, err := p.escrow(s.Initializer, s.Seed)
			if err != nil {
				return ix, nil, err
			}
			ix = escrow.NewDeposit(p.programID, initializer, taker, addr)
			signers = []string{s.Initializer}
		case "withdraw":
			addr, err := p.escrow(s.Initializer, s.Seed)
			if err != nil {
				return ix, nil, err
			}
			ix = escrow.NewWithdraw(p.programID, initializer, taker, addr)
			signers = []string{s.Initializer, s.Taker}
		}
	}

	if len(s.Signers) != 0 {
		signers = s.Signers
	}
	keys := make([]crypto.Signer, 0, len(signers))
	for _, name := range signers {
		k, err := p.key(name)
		if err != nil {
			return ix, nil, err
		}
		keys = append(keys, k)
	}
	return ix, keys, nil
}
