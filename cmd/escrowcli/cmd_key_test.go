package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/custodytest/assert"
)

func TestKeygenKeyaddr(t *testing.T) {
	var mnemonic bytes.Buffer
	assert.Nil(t, cmdKeygen(nil, &mnemonic, nil))
	if n := len(strings.Fields(mnemonic.String())); n != 24 {
		t.Fatalf("want a 24 word mnemonic, got %d words", n)
	}

	var addr bytes.Buffer
	assert.Nil(t, cmdKeyaddr(bytes.NewReader(mnemonic.Bytes()), &addr, nil))

	key, err := crypto.PrivKeyFromMnemonic(strings.TrimSpace(mnemonic.String()), "")
	assert.Nil(t, err)
	got, err := custody.ParsePubkey(strings.TrimSpace(addr.String()))
	assert.Nil(t, err)
	assert.Equal(t, key.PublicKey(), got)
}

func TestKeyaddrPassphrase(t *testing.T) {
	const mnemonic = "super bulk plunge better rookie donor reward obscure rescue type trade pelican"

	var plain, protected bytes.Buffer
	assert.Nil(t, cmdKeyaddr(strings.NewReader(mnemonic), &plain, nil))
	assert.Nil(t, cmdKeyaddr(strings.NewReader(mnemonic+"\n"), &protected, []string{"-passphrase", "secret"}))
	if plain.String() == protected.String() {
		t.Fatal("passphrase must change the key")
	}
}

func TestKeyaddrRejects(t *testing.T) {
	cases := map[string]string{
		"empty input":      "",
		"not a word":       "super bulk plunge better rookie donor reward obscure rescue type trade pelicanx",
		"wrong word count": "super bulk plunge",
	}
	for testName, input := range cases {
		t.Run(testName, func(t *testing.T) {
			var output bytes.Buffer
			if err := cmdKeyaddr(strings.NewReader(input), &output, nil); err == nil {
				t.Fatalf("accepted, got %q", output.String())
			}
		})
	}
}
