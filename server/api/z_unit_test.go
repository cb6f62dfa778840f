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

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/adapter"
	"github.com/zintix-labs/chainspin/dto"
	"github.com/zintix-labs/chainspin/server/netsvr"
	"github.com/zintix-labs/chainspin/server/svrcfg"
	"github.com/zintix-labs/chainspin/spec"
)

func testMachineSetting(t *testing.T) *spec.MachineSetting {
	t.Helper()
	strip := "ABCDEABCDEABCDE"
	ms := &spec.MachineSetting{
		GameName:        "api_test",
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

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	sim := adapter.NewSimulated(testMachineSetting(t), 1_000_000_000, 99)
	if err := sim.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	// 引擎輪詢等待 claim 回合，模擬鏈須開時鐘出塊
	sim.StartClock(time.Millisecond)
	eng, err := chainspin.NewEngine(sim, nil, nil, chainspin.Config{
		PollInterval: time.Millisecond,
		PollBudget:   1000,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(eng.Close)

	svr := netsvr.NewChiServerDefault()
	if err := RegisterRoutes(svr, &svrcfg.SvrCfg{Engine: eng}); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	ts := httptest.NewServer(svr.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestSpinEndToEnd(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/v1/spin", "application/json",
		strings.NewReader(`{"stake_per_line":1000,"line_count":1}`))
	if err != nil {
		t.Fatalf("post spin: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("submit status %d, want 202", resp.StatusCode)
	}
	var submitted dto.SpinDTO
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}
	if submitted.ID == 0 || submitted.BetKey == "" {
		t.Fatalf("submit response incomplete: %+v", submitted)
	}

	wr, err := http.Get(ts.URL + "/v1/spin/" + strconv.FormatUint(submitted.ID, 10) + "/wait")
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	defer wr.Body.Close()
	var final dto.SpinDTO
	if err := json.NewDecoder(wr.Body).Decode(&final); err != nil {
		t.Fatalf("decode wait response: %v", err)
	}
	if final.Status != string(chainspin.StatusCompleted) {
		t.Fatalf("final status %s, want COMPLETED", final.Status)
	}
	if final.Outcome == nil || !final.Outcome.Verified {
		t.Fatalf("final outcome %+v, want verified", final.Outcome)
	}
}

func TestSpinValidationAndNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := http.Post(ts.URL+"/v1/spin", "application/json",
		strings.NewReader(`{"stake_per_line":0,"line_count":1}`))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero stake status %d, want 400", resp.StatusCode)
	}

	resp, _ = http.Post(ts.URL+"/v1/spin", "application/json", strings.NewReader(`not json`))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad body status %d, want 400", resp.StatusCode)
	}

	resp, _ = http.Get(ts.URL + "/v1/spin/424242")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown spin status %d, want 404", resp.StatusCode)
	}
}

func TestQueueConfigBalance(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/queue")
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	defer resp.Body.Close()
	var q dto.QueueDTO
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		t.Fatalf("decode queue: %v", err)
	}

	cr, err := http.Get(ts.URL + "/v1/config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	defer cr.Body.Close()
	var cfg dto.ConfigDTO
	if err := json.NewDecoder(cr.Body).Decode(&cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.GameName != "api_test" || cfg.Columns != 5 {
		t.Fatalf("config %+v", cfg)
	}

	br, err := http.Get(ts.URL + "/v1/balance")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	defer br.Body.Close()
	var bal dto.BalanceDTO
	if err := json.NewDecoder(br.Body).Decode(&bal); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if bal.Balance == 0 {
		t.Fatal("balance should be funded")
	}
}
