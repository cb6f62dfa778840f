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

package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/adapter"
	"github.com/zintix-labs/chainspin/ledger"
	"github.com/zintix-labs/chainspin/sdk/wincalc"
)

func TestNewSpinDTOEncodesKeyAndSeed(t *testing.T) {
	snap := chainspin.SpinSnapshot{
		ID:           7,
		Status:       chainspin.StatusCompleted,
		StakePerLine: 1_000_000,
		LineCount:    20,
		TotalStake:   20_000_000,
		CreatedAt:    time.Now(),
		Commitment: adapter.BetCommitment{
			Key:         []byte{0xde, 0xad, 0xbe, 0xef},
			TxID:        "TX1",
			SubmitRound: ledger.Round(10),
			ClaimRound:  ledger.Round(11),
		},
		Outcome: &adapter.SpinOutcome{
			Grid:        []int16{0, 1, 2},
			Wins:        []wincalc.LineWin{{Line: 0, Symbol: 0, Run: 5, Payout: 500}},
			TotalPayout: 500,
			Round:       ledger.Round(11),
			Seed:        []byte{1, 2, 3, 4},
			Verified:    true,
		},
		Payout: 500,
	}

	d := NewSpinDTO(snap)
	if d.BetKey != "deadbeef" {
		t.Fatalf("bet key %q, want hex deadbeef", d.BetKey)
	}
	if d.SubmitRound != 10 || d.ClaimRound != 11 {
		t.Fatalf("rounds %d/%d, want 10/11", d.SubmitRound, d.ClaimRound)
	}
	if d.Outcome == nil || !d.Outcome.Verified || d.Outcome.SeedB64U == "" {
		t.Fatalf("outcome dto %+v incomplete", d.Outcome)
	}

	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"status":"COMPLETED"`, `"bet_key":"deadbeef"`, `"verified":true`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("json %s missing %s", raw, want)
		}
	}
}

func TestSpinDTOOmitsUnsetFields(t *testing.T) {
	d := NewSpinDTO(chainspin.SpinSnapshot{ID: 1, Status: chainspin.StatusFailed, Error: "boom"})
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "bet_key") || strings.Contains(string(raw), "outcome") {
		t.Fatalf("json %s should omit unset commitment/outcome", raw)
	}
	if !strings.Contains(string(raw), `"error":"boom"`) {
		t.Fatalf("json %s missing error text", raw)
	}
}

func TestSpinRequestValidate(t *testing.T) {
	cases := []struct {
		req SpinRequest
		ok  bool
	}{
		{SpinRequest{StakePerLine: 1000, LineCount: 1}, true},
		{SpinRequest{StakePerLine: 0, LineCount: 1}, false},
		{SpinRequest{StakePerLine: 1000, LineCount: 0}, false},
		{SpinRequest{StakePerLine: 1000, LineCount: -5}, false},
	}
	for i, c := range cases {
		err := c.req.Validate()
		if (err == nil) != c.ok {
			t.Fatalf("case %d: err=%v, want ok=%v", i, err, c.ok)
		}
	}
}
