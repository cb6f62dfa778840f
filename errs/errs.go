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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Kind : 錯誤分類，對應鏈上投注流程會遇到的失敗型態。
//
// 分級（ErrLevel）表達「多嚴重」，分類（Kind）表達「是哪一種失敗」：
//   - KindNotInitialized      : adapter 尚未完成設定解析就被使用（致命，呼叫端需重新 init）。
//   - KindInsufficientBalance : 送出前驗證失敗，玩家調整押注即可（可恢復）。
//   - KindTransactionFailed   : 送出交易被帳本拒絕（該次 spin 終止，嚴禁自動重送已付款的押注）。
//   - KindContractError       : claim 被合約邏輯拒絕（觸發本地回算，對玩家可見流程不致命）。
//   - KindNetwork             : 暫時性網路錯誤（唯讀輪詢類操作可退避重試）。
//   - KindTimeout             : 等待超時（同上，只有唯讀操作可重試）。
type Kind uint8

const (
	KindNone Kind = iota
	KindNotInitialized
	KindInsufficientBalance
	KindTransactionFailed
	KindContractError
	KindNetwork
	KindTimeout
)

var kindMap = map[Kind]string{
	KindNone:                "",
	KindNotInitialized:      "not_initialized",
	KindInsufficientBalance: "insufficient_balance",
	KindTransactionFailed:   "transaction_failed",
	KindContractError:       "contract_error",
	KindNetwork:             "network",
	KindTimeout:             "timeout",
}

func KindName(k Kind) string {
	if str, ok := kindMap[k]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
// Message 為經過樣板格式化後的主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重程度；Kind 表示失敗分類。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Kind != KindNone {
		base = fmt.Sprintf("errlv=%s kind=%s %s", ErrLv(e.ErrLv), KindName(e.Kind), e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// New 依錯誤分級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// NewKind 建立帶分類的錯誤；分級依分類的預設嚴重度決定。
//
// 預設對應：
//   - NotInitialized / TransactionFailed → Fatal（該 spin 無法繼續）
//   - 其餘（餘額、合約、網路、超時）   → Warn（可由上層策略吸收）
func NewKind(k Kind, msg string) *E {
	lv := Warn
	if k == KindNotInitialized || k == KindTransactionFailed {
		lv = Fatal
	}
	return &E{Message: msg, ErrLv: lv, Kind: k}
}

func Kindf(k Kind, format string, a ...any) *E {
	return NewKind(k, fmt.Sprintf(format, a...))
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel / Kind 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Kind（保持原本嚴重度與分類）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
//
// 建議使用方式：
//   - 若你已判斷該錯誤是「可預期且可處理」的情境，請直接建立一個 *E
//     （使用 New / NewKind 並自行指定分級），而不要對其呼叫 Wrap。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	kind := KindNone
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		kind = e.Kind
	}
	r := New(errLv, msg)
	r.Kind = kind
	r.Cause = cause
	return r
}

// WrapKind 包裝底層錯誤並強制指定分類（分級依分類預設）。
// 用於邊界層把三方/標準庫錯誤翻譯成本包的分類語彙。
func WrapKind(cause error, k Kind, msg string) *E {
	r := NewKind(k, msg)
	r.Cause = cause
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// IsKind 回報錯誤鏈上是否存在指定分類。
func IsKind(err error, k Kind) bool {
	var e *E
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
