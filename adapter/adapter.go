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

// Package adapter 擁有所有的帳本 I/O：送出押注承諾、回算盤面、claim 派彩。
//
// 變體是一個封閉集合：Simulated（記憶體、無網路）、LiveFixedLine、
// LiveWays。兩種 Live 變體只在算分方式不同，送出/claim 的交易協定
// 完全相同。變體由 Factory 依機台型態明確選擇，絕不做執行期型別判斷。
package adapter

import (
	"context"

	"github.com/zintix-labs/chainspin/ledger"
	"github.com/zintix-labs/chainspin/sdk/wincalc"
	"github.com/zintix-labs/chainspin/spec"
)

// BetCommitment（bet key）唯一對應一筆已送出的押注。
// 由帳本在送出時回傳，發出後不可變，是送出與 claim 之間唯一的關聯把手。
type BetCommitment struct {
	// Key 為不透明位元組序列，由合約產生。
	Key []byte `json:"key"`
	// TxID 為送出交易的 ID。
	TxID string `json:"tx_id"`
	// SubmitRound 為送出交易確認的回合。
	SubmitRound ledger.Round `json:"submit_round"`
	// ClaimRound 為 SubmitRound + 1：送出當下種子仍未知的第一個回合。
	ClaimRound ledger.Round `json:"claim_round"`
}

// SpinOutcome 是一次 spin 的完整結果。
//
// TotalPayout 恆可由 (盤面, 賠率表, 線表, 押注) 重算；
// Verified == false 時它只是本地回算值，不具權威性。
type SpinOutcome struct {
	Grid        []int16           `json:"grid"`
	Wins        []wincalc.LineWin `json:"wins,omitempty"`
	TotalPayout uint64            `json:"total_payout"`
	// Round 是種子所屬的回合。
	Round ledger.Round `json:"round"`
	Seed  []byte       `json:"seed"`
	// Commitment 是對應的 bet key。
	Commitment []byte `json:"commitment"`
	// ClaimTxID 是權威 claim 交易的 ID；只有 Verified 時非空。
	ClaimTxID string `json:"claim_tx_id,omitempty"`
	// Verified 表示 payout 是否來自帳本權威的 claim，而非本地回算。
	Verified bool `json:"verified"`
}

// MachineAdapter 是機台 adapter 的能力介面。
type MachineAdapter interface {
	// Initialize 取得並快取機台設定；冪等，同一實例最多抓取一次。
	// 任一賠率表項目無法解析時回傳 NotInitialized 錯誤——
	// 不允許任何靜默的預設值。
	Initialize(ctx context.Context) error

	// SubmitSpin 計算應付總額（押注 + 從帳本讀取的協定費用），
	// 原子性送出兩段式承諾（付款 + 遊戲呼叫），並從呼叫回傳值
	// 取出 bet key。送出失敗回傳 TransactionFailed；呼叫端不得
	// 用同一個 player index 重送——每次送出都要重新產生。
	SubmitSpin(ctx context.Context, stakePerLine uint64, lineCount int) (BetCommitment, error)

	// CalculateOutcomeFromSeed 抓取 ClaimRound 的種子並本地回算，
	// 回傳 Verified=false 的結果。只要該回合已存在即可呼叫，
	// 不需等待任何 claim 交易。
	CalculateOutcomeFromSeed(ctx context.Context, commit BetCommitment, stakePerLine uint64, lineCount int) (*SpinOutcome, error)

	// ClaimSpin 嘗試帳本權威的 claim。成功時回傳帳本自己的派彩
	// 數字（Verified=true）；失敗時走與 CalculateOutcomeFromSeed
	// 完全相同的回算路徑回傳 Verified=false——過了這個點絕不往外丟
	// 錯誤，玩家可見的結果（即使未驗證）永遠優先於硬錯誤。
	ClaimSpin(ctx context.Context, commit BetCommitment, stakePerLine uint64, lineCount int) (*SpinOutcome, error)

	// Balance 查詢錢包餘額；唯讀無副作用。
	Balance(ctx context.Context) (uint64, error)
	// CurrentRound 查詢當前區塊高度；唯讀無副作用。
	CurrentRound(ctx context.Context) (ledger.Round, error)
	// Config 回傳快取的機台設定；Initialize 前回傳 nil。
	Config() *spec.MachineSetting
}
