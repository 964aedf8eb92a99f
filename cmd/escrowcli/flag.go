package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iov-one/custody"
)

// flPubkey returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flPubkey(fl *flag.FlagSet, name, defaultVal, usage string) *custody.Pubkey {
	var p pubkeyValue
	if defaultVal != "" {
		if err := p.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q public key flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&p, name, usage)
	return (*custody.Pubkey)(&p)
}

type pubkeyValue custody.Pubkey

func (p *pubkeyValue) String() string {
	return custody.Pubkey(*p).String()
}

func (p *pubkeyValue) Set(raw string) error {
	key, err := custody.ParsePubkey(raw)
	if err != nil {
		return err
	}
	*p = pubkeyValue(key)
	return nil
}

// flSeed registers an optional bump seed flag. A negative value means no
// seed was given.
func flSeed(fl *flag.FlagSet) *int {
	return fl.Int("seed", -1, "Optional bump seed of the escrow address. The canonical bump is searched for when not given.")
}

// seedOf converts a seed flag value into an instruction seed.
func seedOf(v int) (*uint8, error) {
	switch {
	case v < 0:
		return nil, nil
	case v > 255:
		return nil, fmt.Errorf("seed must be a single byte, got %d", v)
	default:
		s := uint8(v)
		return &s, nil
	}
}
