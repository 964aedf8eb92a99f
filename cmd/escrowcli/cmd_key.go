package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/iov-one/custody/crypto"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new BIP39 mnemonic and write it to the output.

The mnemonic is the only secret needed to recover the key. Use keyaddr to
print the public key it controls.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	mnemonic, err := crypto.NewMnemonic()
	if err != nil {
		return fmt.Errorf("cannot generate mnemonic: %s", err)
	}
	_, err = fmt.Fprintln(output, mnemonic)
	return err
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a mnemonic from the input and print out the base58 encoded public key it
controls.
`)
		fl.PrintDefaults()
	}
	var (
		passphraseFl = fl.String("passphrase", env("ESCROWCLI_PASSPHRASE", ""),
			"Optional BIP39 passphrase. You can use ESCROWCLI_PASSPHRASE environment variable to set it.")
	)
	fl.Parse(args)

	mnemonic, err := readMnemonic(input)
	if err != nil {
		return err
	}
	key, err := crypto.PrivKeyFromMnemonic(mnemonic, *passphraseFl)
	if err != nil {
		return fmt.Errorf("invalid mnemonic: %s", err)
	}
	_, err = fmt.Fprintln(output, key.PublicKey())
	return err
}

// readMnemonic returns the first line of the input.
func readMnemonic(input io.Reader) (string, error) {
	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("cannot read mnemonic: %s", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("no mnemonic given")
	}
	return line, nil
}
