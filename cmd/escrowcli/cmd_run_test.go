package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/x/escrow"
)

func TestCmdRunScenario(t *testing.T) {
	var output bytes.Buffer
	err := cmdRun(nil, &output, []string{"-file", "testdata/scenario.yaml"})
	assert.Nil(t, err)

	p := newParties(escrow.ProgramID, nil)
	alice, err := p.pubkey("alice")
	assert.Nil(t, err)
	bob, err := p.pubkey("bob")
	assert.Nil(t, err)
	addr, err := p.escrow("alice", nil)
	assert.Nil(t, err)

	got := output.String()
	wantLines := []string{
		"1 deposit alice -> bob: code 10: ",
		"2 initialize alice -> bob 1000: ok",
		"\tProgram log: Escrow: Initialize amount=1000",
		"3 initialize alice -> bob 5: code 9: ",
		"4 deposit alice -> bob: ok",
		"5 withdraw alice -> mallory: code 4: ",
		"6 withdraw alice -> bob: ok",
		"7 withdraw alice -> bob: code 6: ",
		fmt.Sprintf("alice %s 8593080\n", alice),
		fmt.Sprintf("bob %s 10001000\n", bob),
		"mallory ",
		fmt.Sprintf("escrow(alice) %s 1405920\n", addr),
		"program accounts 1 lamports 1405920\n",
	}
	for _, want := range wantLines {
		if !strings.Contains(got, want) {
			t.Errorf("output is missing %q", want)
		}
	}
	if t.Failed() {
		t.Logf("output:\n%s", got)
	}
}

func TestCmdRunUnexpectedOutcome(t *testing.T) {
	const sc = `
accounts:
  - name: alice
    lamports: 10
steps:
  - op: transfer
    from: alice
    to: bob
    amount: 11
`
	var output bytes.Buffer
	err := cmdRun(strings.NewReader(sc), &output, nil)
	if err == nil {
		t.Fatal("an unexpected failure must stop the run")
	}
	if !strings.Contains(output.String(), "1 transfer alice -> bob 11: code 6: ") {
		t.Fatalf("unexpected output: %s", output.String())
	}
}

func TestCmdRunMissingSignature(t *testing.T) {
	const sc = `
accounts:
  - name: alice
    lamports: 10000000
steps:
  - op: initialize
    initializer: alice
    taker: bob
    amount: 1000
  - op: deposit
    initializer: alice
    taker: bob
  - op: withdraw
    initializer: alice
    taker: bob
    signers: [bob]
    fails: true
`
	var output bytes.Buffer
	assert.Nil(t, cmdRun(strings.NewReader(sc), &output, nil))
	if !strings.Contains(output.String(), "3 withdraw alice -> bob: code 8: ") {
		t.Fatalf("unexpected output: %s", output.String())
	}
}

func TestCmdRunPersistentLedger(t *testing.T) {
	const sc = `
rent:
  lamports_per_byte_year: 1
  exemption_threshold_years: 1
accounts:
  - name: alice
    lamports: 1000
steps:
  - op: transfer
    from: alice
    to: bob
    amount: 100
`
	dir := t.TempDir()
	p := newParties(escrow.ProgramID, nil)
	alice, err := p.pubkey("alice")
	assert.Nil(t, err)

	var first bytes.Buffer
	assert.Nil(t, cmdRun(strings.NewReader(sc), &first, []string{"-db", dir}))
	if !strings.Contains(first.String(), fmt.Sprintf("alice %s 900\n", alice)) {
		t.Fatalf("unexpected first run output: %s", first.String())
	}
	if !strings.Contains(first.String(), "committed version 1 hash ") {
		t.Fatalf("first run did not commit: %s", first.String())
	}

	var second bytes.Buffer
	assert.Nil(t, cmdRun(strings.NewReader(sc), &second, []string{"-db", dir}))
	for _, want := range []string{
		"ledger at version 1, genesis skipped",
		fmt.Sprintf("alice %s 800\n", alice),
		"committed version 2 hash ",
	} {
		if !strings.Contains(second.String(), want) {
			t.Fatalf("second run output is missing %q: %s", want, second.String())
		}
	}
}

func TestCmdRunMetrics(t *testing.T) {
	var output bytes.Buffer
	assert.Nil(t, cmdRun(nil, &output, []string{"-file", "testdata/scenario.yaml", "-metrics"}))
	for _, want := range []string{
		"custody_runtime_transactions_total{",
		"custody_runtime_program_calls_total{",
	} {
		if !strings.Contains(output.String(), want) {
			t.Fatalf("output is missing %q: %s", want, output.String())
		}
	}
}

func TestReadScenarioRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":     "accounts: []\nbogus: 1\n",
		"unknown operation": "steps:\n  - op: burn\n",
		"duplicated party":  "accounts:\n  - name: a\n  - name: a\n",
		"missing taker":     "steps:\n  - op: deposit\n    initializer: a\n",
		"missing recipient": "steps:\n  - op: transfer\n    from: a\n",
	}
	for testName, raw := range cases {
		t.Run(testName, func(t *testing.T) {
			if _, err := readScenario(strings.NewReader(raw), ""); err == nil {
				t.Fatal("scenario accepted")
			}
		})
	}
}
