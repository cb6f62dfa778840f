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

// Package dto 是對外輸出的序列化結構：把引擎內部的快照轉成
// 傳輸層友善的形式（bet key 用 hex、種子用 base64url）。
package dto

import (
	"time"

	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/adapter"
	"github.com/zintix-labs/chainspin/corefmt"
	"github.com/zintix-labs/chainspin/ledger"
	"github.com/zintix-labs/chainspin/sdk/wincalc"
	"github.com/zintix-labs/chainspin/spec"
)

// SpinDTO 是一筆 spin 的對外形式。
type SpinDTO struct {
	ID           uint64    `json:"id"`
	Status       string    `json:"status"`
	StakePerLine uint64    `json:"stake_per_line"`
	LineCount    int       `json:"line_count"`
	TotalStake   uint64    `json:"total_stake"`
	CreatedAt    time.Time `json:"created_at"`

	BetKey      string `json:"bet_key,omitempty"` // hex
	TxID        string `json:"tx_id,omitempty"`
	SubmitRound uint64 `json:"submit_round,omitempty"`
	ClaimRound  uint64 `json:"claim_round,omitempty"`
	ClaimTxID   string `json:"claim_tx_id,omitempty"`

	Outcome *OutcomeDTO `json:"outcome,omitempty"`
	Payout  uint64      `json:"payout"`

	Error   string `json:"error,omitempty"`
	Retries int    `json:"retries,omitempty"`
}

// OutcomeDTO 是 spin 結果的對外形式。
// Verified 是唯一區分「鏈上權威派彩」與「本地回算」的欄位——
// 玩家永遠看得到盤面與派彩數字，驗證狀態只是附帶指標。
type OutcomeDTO struct {
	Grid        []int16           `json:"grid"`
	Wins        []wincalc.LineWin `json:"wins,omitempty"`
	TotalPayout uint64            `json:"total_payout"`
	Round       uint64            `json:"round"`
	SeedB64U    string            `json:"seed_b64u"`
	Verified    bool              `json:"verified"`
}

// NewSpinDTO 由引擎快照建立對外 DTO。
func NewSpinDTO(s chainspin.SpinSnapshot) SpinDTO {
	d := SpinDTO{
		ID:           s.ID,
		Status:       string(s.Status),
		StakePerLine: s.StakePerLine,
		LineCount:    s.LineCount,
		TotalStake:   s.TotalStake,
		CreatedAt:    s.CreatedAt,
		TxID:         s.Commitment.TxID,
		SubmitRound:  uint64(s.Commitment.SubmitRound),
		ClaimRound:   uint64(s.Commitment.ClaimRound),
		ClaimTxID:    s.ClaimTxID,
		Payout:       s.Payout,
		Error:        s.Error,
		Retries:      s.Retries,
	}
	if len(s.Commitment.Key) > 0 {
		d.BetKey = corefmt.EncodeBetKey(s.Commitment.Key)
	}
	if s.Outcome != nil {
		d.Outcome = newOutcomeDTO(s.Outcome)
	}
	return d
}

func newOutcomeDTO(o *adapter.SpinOutcome) *OutcomeDTO {
	return &OutcomeDTO{
		Grid:        o.Grid,
		Wins:        o.Wins,
		TotalPayout: o.TotalPayout,
		Round:       uint64(o.Round),
		SeedB64U:    corefmt.EncodeSeed(o.Seed),
		Verified:    o.Verified,
	}
}

// QueueDTO 是佇列狀態的對外形式。
type QueueDTO struct {
	Active  []SpinDTO               `json:"active"`
	Metrics chainspin.EngineMetrics `json:"metrics"`
}

func NewQueueDTO(qs chainspin.QueueState) QueueDTO {
	d := QueueDTO{
		Active:  make([]SpinDTO, len(qs.Active)),
		Metrics: qs.Metrics,
	}
	for i, s := range qs.Active {
		d.Active[i] = NewSpinDTO(s)
	}
	return d
}

// ConfigDTO 是機台設定的對外摘要（不含輪帶內容，避免洩漏可被
// 預先計算的資訊以外的細節——盤面推導本來就是公開演算法，
// 但對外摘要只給 UI 需要的東西）。
type ConfigDTO struct {
	GameName      string   `json:"game"`
	GameID        spec.GID `json:"game_id"`
	MachineType   string   `json:"machine_type"`
	Columns       int      `json:"columns"`
	Rows          int      `json:"rows"`
	Symbols       []string `json:"symbols"`
	MinStake      uint64   `json:"min_stake_per_line"`
	MaxStake      uint64   `json:"max_stake_per_line"`
	MaxLines      int      `json:"max_lines"`
	MaxMultiplier uint64   `json:"max_multiplier"`
}

func NewConfigDTO(ms *spec.MachineSetting) ConfigDTO {
	return ConfigDTO{
		GameName:      ms.GameName,
		GameID:        ms.GameID,
		MachineType:   ms.MachineType.String(),
		Columns:       ms.Reel.Columns,
		Rows:          ms.Reel.Rows,
		Symbols:       ms.Paytable.SymbolUsedStr,
		MinStake:      ms.MinStakePerUnit,
		MaxStake:      ms.MaxStakePerUnit,
		MaxLines:      ms.MaxLines,
		MaxMultiplier: ms.Paytable.MaxMultiplier,
	}
}

// BalanceDTO 是錢包餘額查詢的對外形式。
type BalanceDTO struct {
	Balance uint64 `json:"balance"`
	Round   uint64 `json:"round"`
}

func NewBalanceDTO(balance uint64, round ledger.Round) BalanceDTO {
	return BalanceDTO{Balance: balance, Round: uint64(round)}
}
