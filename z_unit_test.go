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

package chainspin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zintix-labs/chainspin/adapter"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/ledger"
	"github.com/zintix-labs/chainspin/spec"
)

func testMachineSetting(t *testing.T) *spec.MachineSetting {
	t.Helper()
	strip := "ABCDEABCDEABCDE"
	ms := &spec.MachineSetting{
		GameName:        "engine_test",
		GameID:          1,
		MachineTypeStr:  "fixed_line",
		AppID:           7,
		MinStakePerUnit: 1000,
		MaxStakePerUnit: 10_000_000,
		Reel: spec.ReelSetting{
			Strips: []string{strip, strip, strip, strip, strip},
			Rows:   3,
		},
		Paytable: spec.PaytableSetting{
			SymbolUsedStr: []string{"A", "B", "C", "D", "E"},
			PayTable: [][]uint64{
				{0, 0, 50, 500, 10000},
				{0, 0, 25, 100, 1000},
				{0, 0, 10, 50, 200},
				{0, 0, 5, 20, 100},
				{0, 0, 2, 10, 50},
			},
		},
		Payline: spec.PaylineSetting{
			LineTable: [][]int16{{1, 1, 1, 1, 1}},
		},
	}
	if err := ms.Init(); err != nil {
		t.Fatalf("machine setting init: %v", err)
	}
	return ms
}

func newTestEngine(t *testing.T, balance uint64, sink Sink) (*Engine, *adapter.Simulated) {
	t.Helper()
	sim := adapter.NewSimulated(testMachineSetting(t), balance, 99)
	if err := sim.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	// 引擎輪詢等待 claim 回合，模擬鏈須開時鐘出塊
	sim.StartClock(time.Millisecond)
	e, err := NewEngine(sim, nil, sink, Config{
		PollInterval: time.Millisecond,
		PollBudget:   1000,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(e.Close)
	return e, sim
}

func TestEngineHappyPathVerified(t *testing.T) {
	e, sim := newTestEngine(t, 100_000_000, nil)
	ctx := context.Background()

	// 中排全 A：stop 4 時每軸視窗是 E/A/B
	sim.ForceStops([]int{4, 4, 4, 4, 4})

	snap, err := e.SubmitSpin(ctx, 1_000_000, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap.Status != StatusWaiting {
		t.Fatalf("status after submit %s, want %s", snap.Status, StatusWaiting)
	}
	if snap.Commitment.ClaimRound != snap.Commitment.SubmitRound+1 {
		t.Fatalf("claim round %d, want submit+1", snap.Commitment.ClaimRound)
	}

	fin, err := e.Wait(ctx, snap.ID)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if fin.Status != StatusCompleted {
		t.Fatalf("status %s, want %s (err=%q)", fin.Status, StatusCompleted, fin.Error)
	}
	if fin.Outcome == nil || !fin.Outcome.Verified {
		t.Fatalf("outcome %+v, want verified", fin.Outcome)
	}
	// 權威 claim 的交易 ID 要落在快照上
	if fin.ClaimTxID == "" || fin.ClaimTxID != fin.Outcome.ClaimTxID {
		t.Fatalf("claim tx id missing from snapshot: %q vs %q", fin.ClaimTxID, fin.Outcome.ClaimTxID)
	}
	// A×5 於 1 條線，1,000,000 × 10000
	if fin.Payout != 10_000_000_000 {
		t.Fatalf("payout %d, want 10_000_000_000", fin.Payout)
	}

	m := e.Metrics()
	if m.Completed != 1 || m.Verified != 1 || m.Inflight != 0 {
		t.Fatalf("metrics %+v, want completed=1 verified=1 inflight=0", m)
	}
}

func TestEngineClaimFailureCompletesUnverified(t *testing.T) {
	e, sim := newTestEngine(t, 100_000_000, nil)
	ctx := context.Background()

	sim.FailClaims(errs.NewKind(errs.KindContractError, "claim rejected"))

	snap, err := e.SubmitSpin(ctx, 1_000_000, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	fin, err := e.Wait(ctx, snap.ID)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}

	// claim 被拒也要完成：結果非空、只是未驗證
	if fin.Status != StatusCompleted {
		t.Fatalf("status %s, want %s", fin.Status, StatusCompleted)
	}
	if fin.Outcome == nil {
		t.Fatal("outcome missing after claim failure")
	}
	if fin.Outcome.Verified {
		t.Fatal("outcome verified, want unverified fallback")
	}
	if fin.ClaimTxID != "" {
		t.Fatalf("unverified fallback must not carry a claim tx id, got %q", fin.ClaimTxID)
	}

	m := e.Metrics()
	if m.Completed != 1 || m.ClaimFallbacks != 1 || m.Verified != 0 {
		t.Fatalf("metrics %+v, want completed=1 fallbacks=1 verified=0", m)
	}
}

func TestEngineSubmitFailureTerminal(t *testing.T) {
	// 餘額連一注都不夠
	e, _ := newTestEngine(t, 1000, nil)
	ctx := context.Background()

	snap, err := e.SubmitSpin(ctx, 1_000_000, 1)
	if err == nil {
		t.Fatal("submit with empty balance should fail")
	}
	if !errs.IsKind(err, errs.KindInsufficientBalance) {
		t.Fatalf("err kind %v, want InsufficientBalance", err)
	}
	if snap.Status != StatusFailed {
		t.Fatalf("status %s, want %s", snap.Status, StatusFailed)
	}
	if snap.Error == "" {
		t.Fatal("failed spin should carry error text")
	}

	// 失敗的 spin 不會自動重送，但仍可查詢
	got, err := e.Outcome(snap.ID)
	if err != nil {
		t.Fatalf("outcome lookup: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("lookup status %s, want FAILED", got.Status)
	}

	m := e.Metrics()
	if m.Failed != 1 || m.Submitted != 0 {
		t.Fatalf("metrics %+v, want failed=1 submitted=0", m)
	}
}

// stuckAdapter 的鏈永遠停在回合 1，讓等待階段必然超出預算。
type stuckAdapter struct {
	*adapter.Simulated
}

func (s *stuckAdapter) CurrentRound(_ context.Context) (ledger.Round, error) {
	return 1, nil
}

func TestEngineExpiresOnPollBudget(t *testing.T) {
	sim := adapter.NewSimulated(testMachineSetting(t), 100_000_000, 99)
	if err := sim.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	e, err := NewEngine(&stuckAdapter{sim}, nil, nil, Config{
		PollInterval: time.Millisecond,
		PollBudget:   3,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer e.Close()

	snap, err := e.SubmitSpin(context.Background(), 1_000_000, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	fin, err := e.Wait(context.Background(), snap.ID)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if fin.Status != StatusExpired {
		t.Fatalf("status %s, want %s", fin.Status, StatusExpired)
	}
	if fin.Retries < 3 {
		t.Fatalf("retries %d, want >= 3", fin.Retries)
	}
	if m := e.Metrics(); m.Expired != 1 {
		t.Fatalf("metrics %+v, want expired=1", m)
	}
}

func TestOutcomeMonotonic(t *testing.T) {
	q := newQueuedSpin(1, 1000, 1)

	unverified := &adapter.SpinOutcome{TotalPayout: 5000, Verified: false}
	verified := &adapter.SpinOutcome{TotalPayout: 7000, Verified: true}

	q.setOutcome(unverified)
	if q.Snapshot().Payout != 5000 {
		t.Fatal("provisional outcome not stored")
	}

	q.setOutcome(verified)
	if got := q.Snapshot(); got.Payout != 7000 || !got.Outcome.Verified {
		t.Fatal("verified outcome should supersede provisional")
	}

	// 已驗證不得被未驗證覆蓋
	q.setOutcome(unverified)
	if got := q.Snapshot(); got.Payout != 7000 || !got.Outcome.Verified {
		t.Fatal("verified outcome must never downgrade")
	}
}

type testSink struct {
	mu    sync.Mutex
	snaps []SpinSnapshot
}

func (s *testSink) RecordSpin(snap SpinSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
	return nil
}

func TestQueueDrainsAndSinkRecords(t *testing.T) {
	sink := &testSink{}
	e, _ := newTestEngine(t, 1_000_000_000, sink)
	ctx := context.Background()

	const n = 5
	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		snap, err := e.SubmitSpin(ctx, 10_000, 1)
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		ids = append(ids, snap.ID)
	}
	for _, id := range ids {
		if _, err := e.Wait(ctx, id); err != nil {
			t.Fatalf("wait %d: %v", id, err)
		}
	}

	qs := e.QueueState()
	if len(qs.Active) != 0 {
		t.Fatalf("active queue has %d entries after drain", len(qs.Active))
	}
	if qs.Metrics.Completed != n {
		t.Fatalf("completed %d, want %d", qs.Metrics.Completed, n)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.snaps) != n {
		t.Fatalf("sink saw %d spins, want %d", len(sink.snaps), n)
	}
	for _, s := range sink.snaps {
		if !s.Status.Terminal() {
			t.Fatalf("sink received non-terminal snapshot %s", s.Status)
		}
	}
}

func TestEngineClosedRejectsSubmit(t *testing.T) {
	e, _ := newTestEngine(t, 100_000_000, nil)
	e.Close()
	if _, err := e.SubmitSpin(context.Background(), 1_000_000, 1); err == nil {
		t.Fatal("submit on closed engine should fail")
	}
}
