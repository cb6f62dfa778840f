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
	"net/http"
	"time"

	"github.com/zintix-labs/chainspin/dto"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/server/httperr"
)

const queryTimeout = 5 * time.Second

// Config 回傳引擎目前機台的設定摘要。
func (c *SpinHandler) Config(w http.ResponseWriter, _ *http.Request) {
	ms := c.eng.Adapter().Config()
	if ms == nil {
		httperr.Errs(w, errs.NewKind(errs.KindNotInitialized, "machine setting not fetched yet"))
		return
	}
	writeJSON(w, http.StatusOK, dto.NewConfigDTO(ms))
}

// Balance 查詢錢包餘額與當前回合；唯讀無副作用。
func (c *SpinHandler) Balance(w http.ResponseWriter, q *http.Request) {
	ctx, cancel := context.WithTimeout(q.Context(), queryTimeout)
	defer cancel()

	ad := c.eng.Adapter()
	balance, err := ad.Balance(ctx)
	if err != nil {
		httperr.Log(c.log, "balance query failed", err)
		httperr.Errs(w, err)
		return
	}
	round, err := ad.CurrentRound(ctx)
	if err != nil {
		httperr.Log(c.log, "round query failed", err)
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewBalanceDTO(balance, round))
}
