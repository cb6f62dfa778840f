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

package httperr

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/chainspin/errs"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則（邊界層最小映射、可預期）：
//   - ctx timeout/cancel           → 504/408（請求生命週期問題）
//   - KindNotInitialized           → 503（adapter 還沒完成設定抓取）
//   - KindInsufficientBalance      → 402（押注超出範圍或餘額不足）
//   - KindTransactionFailed        → 502（帳本拒絕送出）
//   - KindContractError            → 502（合約拒絕 claim）
//   - KindNetwork / KindTimeout    → 502/504
//   - errs.Warn                    → 400（請求/參數問題）
//   - errs.Fatal                   → 500（系統/不可恢復問題）
//
// 注意：本函數屬於 HTTP 邊界層，因此放在 server/*（而不是 core errs）。
// 這樣可以避免讓核心錯誤包依賴 net/http 等傳輸層細節。
func StatusCode(err error) int {
	// 1) 先處理 context 取消/超時（即使被 wrap 也能被 errors.Is 命中）
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout // 504
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout // 408
	}

	// 2) 失敗分類（Kind）優先於嚴重度（ErrLevel）——
	// 同一個 Warn 可能是參數錯（400）也可能是餘額不足（402）
	switch {
	case errs.IsKind(err, errs.KindNotInitialized):
		return http.StatusServiceUnavailable // 503
	case errs.IsKind(err, errs.KindInsufficientBalance):
		return http.StatusPaymentRequired // 402
	case errs.IsKind(err, errs.KindTransactionFailed),
		errs.IsKind(err, errs.KindContractError),
		errs.IsKind(err, errs.KindNetwork):
		return http.StatusBadGateway // 502
	case errs.IsKind(err, errs.KindTimeout):
		return http.StatusGatewayTimeout // 504
	}

	// 3) 再處理內部錯誤分級（errs.E/Wrap）
	status := http.StatusInternalServerError
	var e *errs.E
	if errors.As(err, &e) {
		switch e.ErrLv {
		case errs.Warn:
			status = http.StatusBadRequest // 400
		case errs.Fatal:
			status = http.StatusInternalServerError // 500
		default:
			status = http.StatusInternalServerError
		}
	}

	return status
}

// Errs 決定 status code 並寫回簡單的 http.Error。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	http.Error(w, err.Error(), status)
}

// Log 依映射後的 status 決定 log 等級；2xx/3xx/4xx（客戶端問題）不進 error log。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	if (status == 408) || (status == 409) || (status == 429) {
		log.Warn(msg, slog.Any("err", err))
	} else if (status >= 500) && (status < 600) {
		log.Error(msg, slog.Any("err", err))
	}
}
