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

package recorder

import (
	"bytes"
	"math"
	"testing"

	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/adapter"
)

func completedSnap(id uint64, stake uint64, lines int, payout uint64, verified bool) chainspin.SpinSnapshot {
	return chainspin.SpinSnapshot{
		ID:           id,
		Status:       chainspin.StatusCompleted,
		StakePerLine: stake,
		LineCount:    lines,
		TotalStake:   stake * uint64(lines),
		Payout:       payout,
		Outcome: &adapter.SpinOutcome{
			TotalPayout: payout,
			Verified:    verified,
		},
	}
}

func TestSpinRecorderBasic(t *testing.T) {
	r, err := NewSpinRecorder("rec_test", 1, 1000, 10)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	// 3 局：0、10,000（1倍）、50,000（5倍），其中一局回退
	r.Record(completedSnap(1, 1000, 10, 0, true))
	r.Record(completedSnap(2, 1000, 10, 10_000, true))
	r.Record(completedSnap(3, 1000, 10, 50_000, false))
	r.Record(chainspin.SpinSnapshot{ID: 4, Status: chainspin.StatusFailed})
	r.Record(chainspin.SpinSnapshot{ID: 5, Status: chainspin.StatusExpired})

	st := r.Done()
	if st.Summary.Rounds != 3 {
		t.Fatalf("rounds %d, want 3 (failures excluded)", st.Summary.Rounds)
	}
	if st.Summary.TotalBet != 30_000 || st.Summary.TotalWin != 60_000 {
		t.Fatalf("bet/win %d/%d, want 30000/60000", st.Summary.TotalBet, st.Summary.TotalWin)
	}
	if got := st.Summary.RTP; math.Abs(got-2.0) > 1e-12 {
		t.Fatalf("rtp %f, want 2.0", got)
	}
	if st.Summary.Verified != 2 || st.Summary.Fallbacks != 1 {
		t.Fatalf("verified/fallbacks %d/%d, want 2/1", st.Summary.Verified, st.Summary.Fallbacks)
	}
	if st.Summary.Failed != 1 || st.Summary.Expired != 1 {
		t.Fatalf("failed/expired %d/%d, want 1/1", st.Summary.Failed, st.Summary.Expired)
	}
	if st.Summary.NoWinRounds != 1 {
		t.Fatalf("nowin %d, want 1", st.Summary.NoWinRounds)
	}
	if math.Abs(st.Summary.HitRate-2.0/3.0) > 1e-12 {
		t.Fatalf("hit rate %f, want 2/3", st.Summary.HitRate)
	}
}

func TestSpinRecorderRejectsNonTerminal(t *testing.T) {
	r, _ := NewSpinRecorder("rec_test", 1, 1000, 1)
	err := r.RecordSpin(chainspin.SpinSnapshot{Status: chainspin.StatusWaiting})
	if err == nil {
		t.Fatal("non-terminal snapshot should be rejected")
	}
}

func TestMergeSpinRecorder(t *testing.T) {
	a, _ := NewSpinRecorder("rec_test", 1, 1000, 10)
	b, _ := NewSpinRecorder("rec_test", 1, 1000, 10)
	a.Record(completedSnap(1, 1000, 10, 10_000, true))
	b.Record(completedSnap(2, 1000, 10, 0, true))

	m, err := MergeSpinRecorder([]*SpinRecorder{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	st := m.Done()
	if st.Summary.Rounds != 2 || st.Summary.TotalWin != 10_000 {
		t.Fatalf("merged rounds/win %d/%d, want 2/10000", st.Summary.Rounds, st.Summary.TotalWin)
	}

	c, _ := NewSpinRecorder("rec_test", 1, 2000, 10)
	if _, err := MergeSpinRecorder([]*SpinRecorder{a, c}); err == nil {
		t.Fatal("merge with different bet shape should fail")
	}
}

func TestJournalRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	j, err := NewJournal(&buf)
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}

	snaps := []chainspin.SpinSnapshot{
		completedSnap(1, 1000, 10, 0, true),
		completedSnap(2, 1000, 10, 50_000, false),
		{ID: 3, Status: chainspin.StatusFailed, Error: "boom"},
	}
	for _, s := range snaps {
		if err := j.RecordSpin(s); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := ReadJournal(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if len(got) != len(snaps) {
		t.Fatalf("read %d entries, want %d", len(got), len(snaps))
	}
	for i := range snaps {
		if got[i].ID != snaps[i].ID || got[i].Status != snaps[i].Status || got[i].Payout != snaps[i].Payout {
			t.Fatalf("entry %d mismatch: %+v vs %+v", i, got[i], snaps[i])
		}
	}

	// 關閉後寫入要被拒絕
	if err := j.RecordSpin(snaps[0]); err == nil {
		t.Fatal("write after close should fail")
	}
}

func TestTeeFansOut(t *testing.T) {
	a, _ := NewSpinRecorder("rec_test", 1, 1000, 1)
	b, _ := NewSpinRecorder("rec_test", 1, 1000, 1)
	sink := Tee(a, b)

	if err := sink.RecordSpin(completedSnap(1, 1000, 1, 2000, true)); err != nil {
		t.Fatalf("tee record: %v", err)
	}
	if a.Basic.Rounds != 1 || b.Basic.Rounds != 1 {
		t.Fatal("both sinks should record the spin")
	}
}
