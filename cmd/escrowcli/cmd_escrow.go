package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/x/escrow"
)

// flProgram registers the flag selecting the escrow program id.
func flProgram(fl *flag.FlagSet) *custody.Pubkey {
	return flPubkey(fl, "program", env("ESCROWCLI_PROGRAM", escrow.ProgramID.String()),
		"Escrow program id. You can use ESCROWCLI_PROGRAM environment variable to set it.")
}

func cmdDerive(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the escrow address of an initializer together with its bump seed.
`)
		fl.PrintDefaults()
	}
	var (
		programFl     = flProgram(fl)
		initializerFl = flPubkey(fl, "initializer", "", "Public key of the party that opens the escrow.")
		seedFl        = flSeed(fl)
	)
	fl.Parse(args)

	seed, err := seedOf(*seedFl)
	if err != nil {
		return err
	}
	addr, bump, err := escrow.Address(*programFl, *initializerFl, seed)
	if err != nil {
		return fmt.Errorf("cannot derive escrow address: %s", err)
	}
	_, err = fmt.Fprintf(output, "%s %d\n", addr, bump)
	return err
}

func cmdInitialize(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create an instruction that opens an escrow of the given amount between the
initializer and the taker. The instruction is written as JSON.
`)
		fl.PrintDefaults()
	}
	var (
		programFl     = flProgram(fl)
		initializerFl = flPubkey(fl, "initializer", "", "Public key of the party that opens and funds the escrow.")
		takerFl       = flPubkey(fl, "taker", "", "Public key of the party that receives the funds.")
		amountFl      = fl.Uint64("amount", 0, "Amount held by the escrow.")
		seedFl        = flSeed(fl)
	)
	fl.Parse(args)

	seed, err := seedOf(*seedFl)
	if err != nil {
		return err
	}
	ix, _, err := escrow.NewInitialize(*programFl, *initializerFl, *takerFl, *amountFl, seed)
	if err != nil {
		return fmt.Errorf("cannot derive escrow address: %s", err)
	}
	return writeInstruction(output, ix)
}

func cmdDeposit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create an instruction that moves the escrowed amount from the initializer into
the escrow. The instruction is written as JSON.
`)
		fl.PrintDefaults()
	}
	var (
		programFl     = flProgram(fl)
		initializerFl = flPubkey(fl, "initializer", "", "Public key of the party that opened the escrow.")
		takerFl       = flPubkey(fl, "taker", "", "Public key of the party that receives the funds.")
		seedFl        = flSeed(fl)
	)
	fl.Parse(args)

	addr, err := escrowAddress(*programFl, *initializerFl, *seedFl)
	if err != nil {
		return err
	}
	return writeInstruction(output, escrow.NewDeposit(*programFl, *initializerFl, *takerFl, addr))
}

func cmdWithdraw(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create an instruction that releases the escrowed amount to the taker. Both
parties must sign the transaction carrying it. The instruction is written as
JSON.
`)
		fl.PrintDefaults()
	}
	var (
		programFl     = flProgram(fl)
		initializerFl = flPubkey(fl, "initializer", "", "Public key of the party that opened the escrow.")
		takerFl       = flPubkey(fl, "taker", "", "Public key of the party that receives the funds.")
		seedFl        = flSeed(fl)
	)
	fl.Parse(args)

	addr, err := escrowAddress(*programFl, *initializerFl, *seedFl)
	if err != nil {
		return err
	}
	return writeInstruction(output, escrow.NewWithdraw(*programFl, *initializerFl, *takerFl, addr))
}

func escrowAddress(programID, initializer custody.Pubkey, seedFl int) (custody.Pubkey, error) {
	seed, err := seedOf(seedFl)
	if err != nil {
		return custody.Pubkey{}, err
	}
	addr, _, err := escrow.Address(programID, initializer, seed)
	if err != nil {
		return custody.Pubkey{}, fmt.Errorf("cannot derive escrow address: %s", err)
	}
	return addr, nil
}

func writeInstruction(output io.Writer, ix custody.Instruction) error {
	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ix); err != nil {
		return fmt.Errorf("cannot serialize instruction: %s", err)
	}
	return nil
}
