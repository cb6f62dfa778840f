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

package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/dto"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/server/httperr"
	"github.com/zintix-labs/chainspin/server/svrcfg"
)

// submitTimeout 只管「送出交易」這一段；等待 claim 回合在背景進行，
// 不佔用請求生命週期。
const submitTimeout = 15 * time.Second

// Submit 送出一筆押注。回應是 PENDING/WAITING 的快照——
// 結果要用 GET /spin/{id} 或 /spin/{id}/wait 拿。
func (c *SpinHandler) Submit(w http.ResponseWriter, q *http.Request) {
	var req dto.SpinRequest
	if err := json.NewDecoder(q.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		httperr.Errs(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(q.Context(), submitTimeout)
	defer cancel()

	snap, err := c.eng.SubmitSpin(ctx, req.StakePerLine, req.LineCount)
	if err != nil {
		httperr.Log(c.log, "spin submit failed", err)
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, dto.NewSpinDTO(snap))
}

// Get 查詢單筆 spin 的當下快照（含終態）。
func (c *SpinHandler) Get(w http.ResponseWriter, q *http.Request) {
	id, err := spinID(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	snap, err := c.eng.Outcome(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewSpinDTO(snap))
}

// Wait 阻塞到 spin 達終態或請求被取消（client 斷線/timeout）。
func (c *SpinHandler) Wait(w http.ResponseWriter, q *http.Request) {
	id, err := spinID(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if _, err := c.eng.Outcome(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	snap, err := c.eng.Wait(q.Context(), id)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewSpinDTO(snap))
}

// Queue 回傳所有活躍 spin 與引擎觀測數據。
func (c *SpinHandler) Queue(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dto.NewQueueDTO(c.eng.QueueState()))
}

// ============================================================
// ** SpinHandler **
// ============================================================

type SpinHandler struct {
	eng *chainspin.Engine
	log *slog.Logger
}

func NewSpinHandler(sCfg *svrcfg.SvrCfg) (*SpinHandler, error) {
	if sCfg == nil || sCfg.Engine == nil {
		return nil, errs.NewFatal("build spin handler error: engine is required")
	}
	return &SpinHandler{eng: sCfg.Engine, log: sCfg.Log}, nil
}

func spinID(q *http.Request) (uint64, error) {
	raw := chi.URLParam(q, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errs.Warnf("invalid spin id %q", raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// header 已送出，encode 失敗也無法改寫 status
	_ = json.NewEncoder(w).Encode(v)
}
