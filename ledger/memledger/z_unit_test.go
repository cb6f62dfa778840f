// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package memledger

import (
	"bytes"
	"context"
	"testing"

	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/ledger"
)

type echoApp struct {
	calls int
}

func (a *echoApp) OnCall(call *CallCtx) ([]byte, [][]byte, error) {
	a.calls++
	if call.Method == "reject" {
		return nil, nil, errs.NewKind(errs.KindContractError, "forced rejection")
	}
	if call.Method == "payout" {
		if err := call.Pay(AppAddress(call.AppID), call.Sender, 5000); err != nil {
			return nil, nil, err
		}
	}
	return []byte(call.Method), [][]byte{[]byte("log-entry")}, nil
}

func signAll(txns []ledger.Transaction) []ledger.SignedTxn {
	signed := make([]ledger.SignedTxn, len(txns))
	for i, t := range txns {
		signed[i] = ledger.SignedTxn{Txn: t, Sig: []byte("sig")}
	}
	return signed
}

func TestPaymentTransfersAndCharges(t *testing.T) {
	l := New(Config{BaseSeed: 1})
	l.Fund("alice", 1_000_000)

	ctx := context.Background()
	res, err := l.SubmitGroup(ctx, signAll([]ledger.Transaction{{
		Type: ledger.TxPayment, Sender: "alice", Receiver: "bob", Amount: 400_000, Fee: MinFee,
	}}))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(res.TxIDs) != 1 || res.TxIDs[0] == "" {
		t.Fatalf("missing txid: %+v", res)
	}

	aliceBal, _ := l.AccountBalance(ctx, "alice")
	bobBal, _ := l.AccountBalance(ctx, "bob")
	if aliceBal != 1_000_000-400_000-MinFee {
		t.Fatalf("alice balance %d", aliceBal)
	}
	if bobBal != 400_000 {
		t.Fatalf("bob balance %d", bobBal)
	}
}

func TestSubmitGroupAtomicRollback(t *testing.T) {
	l := New(Config{BaseSeed: 1})
	l.Fund("alice", 1_000_000)
	app := &echoApp{}
	l.RegisterApp(7, app)

	ctx := context.Background()
	_, err := l.SubmitGroup(ctx, signAll([]ledger.Transaction{
		{Type: ledger.TxPayment, Sender: "alice", Receiver: AppAddress(7), Amount: 100_000, Fee: MinFee},
		{Type: ledger.TxAppCall, Sender: "alice", AppID: 7, Method: "reject", Fee: MinFee},
	}))
	if err == nil {
		t.Fatal("expected group rejection")
	}
	if !errs.IsKind(err, errs.KindContractError) {
		t.Fatalf("expected contract error, got %v", err)
	}

	// 付款不得落地
	aliceBal, _ := l.AccountBalance(ctx, "alice")
	if aliceBal != 1_000_000 {
		t.Fatalf("rollback failed, alice balance %d", aliceBal)
	}
}

func TestAppCallReturnsAndLogs(t *testing.T) {
	l := New(Config{BaseSeed: 1})
	l.Fund("alice", 100_000)
	l.Fund(AppAddress(7), 1_000_000)
	l.RegisterApp(7, &echoApp{})

	ctx := context.Background()
	res, err := l.SubmitGroup(ctx, signAll([]ledger.Transaction{
		{Type: ledger.TxAppCall, Sender: "alice", AppID: 7, Method: "payout", Fee: MinFee},
	}))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if string(res.Returns[0]) != "payout" {
		t.Fatalf("unexpected return: %q", res.Returns[0])
	}
	if len(res.Logs[0]) != 1 || string(res.Logs[0][0]) != "log-entry" {
		t.Fatalf("unexpected logs: %v", res.Logs[0])
	}
	aliceBal, _ := l.AccountBalance(ctx, "alice")
	if aliceBal != 100_000-MinFee+5000 {
		t.Fatalf("alice balance %d", aliceBal)
	}
}

func TestBlockSeedDeterministic(t *testing.T) {
	a := New(Config{BaseSeed: 42})
	b := New(Config{BaseSeed: 42})
	other := New(Config{BaseSeed: 43})

	ctx := context.Background()
	seedA, err := a.BlockSeed(ctx, 1)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(seedA) != 32 {
		t.Fatalf("expected 32-byte seed, got %d", len(seedA))
	}
	seedB, _ := b.BlockSeed(ctx, 1)
	if !bytes.Equal(seedA, seedB) {
		t.Fatal("same base seed produced different block seeds")
	}
	seedOther, _ := other.BlockSeed(ctx, 1)
	if bytes.Equal(seedA, seedOther) {
		t.Fatal("different base seeds produced identical block seeds")
	}
}

func TestBlockSeedFutureRoundUnavailable(t *testing.T) {
	l := New(Config{BaseSeed: 1})
	ctx := context.Background()
	if _, err := l.BlockSeed(ctx, 100); err == nil {
		t.Fatal("expected error for future round")
	} else if !errs.IsKind(err, errs.KindNetwork) {
		t.Fatalf("expected network kind, got %v", err)
	}
	l.AdvanceRound()
	cur, _ := l.CurrentRound(ctx)
	if _, err := l.BlockSeed(ctx, cur); err != nil {
		t.Fatalf("seed of current round should exist: %v", err)
	}
}

func TestSubmitGroupAdvancesRound(t *testing.T) {
	l := New(Config{BaseSeed: 1})
	l.Fund("alice", 1_000_000)

	ctx := context.Background()
	before, _ := l.CurrentRound(ctx)
	res, err := l.SubmitGroup(ctx, signAll([]ledger.Transaction{{
		Type: ledger.TxPayment, Sender: "alice", Receiver: "bob", Amount: 1, Fee: MinFee,
	}}))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.ConfirmedRound != before+1 {
		t.Fatalf("expected confirmation at %d, got %d", before+1, res.ConfirmedRound)
	}
	after, _ := l.CurrentRound(ctx)
	if after != res.ConfirmedRound {
		t.Fatalf("round did not advance: %d", after)
	}
}

func TestUnsignedGroupRejected(t *testing.T) {
	l := New(Config{BaseSeed: 1})
	_, err := l.SubmitGroup(context.Background(), []ledger.SignedTxn{{
		Txn: ledger.Transaction{Type: ledger.TxPayment, Sender: "a", Receiver: "b", Fee: MinFee},
	}})
	if !errs.IsKind(err, errs.KindTransactionFailed) {
		t.Fatalf("expected transaction_failed, got %v", err)
	}
}
