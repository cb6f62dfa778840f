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

// Package wincalc 依賠率表與線表對盤面算分。
//
// 派彩全程使用 uint64 整數運算（最小貨幣單位），不得出現浮點：
// 本地算出的 payout 必須與合約的整數數學逐位元一致，才能與
// 鏈上 claim 的權威數字比對。
package wincalc

import (
	"log"

	"github.com/zintix-labs/chainspin/spec"
)

// SymbolMask 使用 uint64 以支援最多 64 種不同的圖標
// 判斷圖標是否在遮罩中：(mask>>index)&1 == 1
type SymbolMask = uint64

// LineWin 描述單一中獎項。
//
// 固定線機台：Line 為線表索引，Ways 恆為 1。
// ways 機台：Line 恆為 -1，Ways 為該圖標的組合數。
type LineWin struct {
	Line      int     `json:"line"`
	Symbol    int16   `json:"symbol"`
	Run       int     `json:"run"`
	Ways      int     `json:"ways"`
	Payout    uint64  `json:"payout"`
	Positions []int16 `json:"positions,omitempty"`
}

// Result 是一次盤面算分的輸出。
// Total 恆等於所有 Wins 的 Payout 總和，可由 (盤面, 賠率表, 線表, 押注) 重算驗證。
type Result struct {
	Total uint64    `json:"total"`
	Wins  []LineWin `json:"wins,omitempty"`
}

type evalFn func(ev *Evaluator, stakePerUnit uint64, lineCount int, screen []int16) Result

var fromMachineTypeGetEvalFn = map[spec.MachineType]evalFn{
	spec.MachineTypeFixedLine: evalByLine,
	spec.MachineTypeWays:      evalByWay,
}

// Evaluator 負責根據盤面計算輸贏結果。
// 建構時預先平坦化線表與賠率表，熱路徑不查 map、不碰設定結構。
type Evaluator struct {
	// 快取盤面幾何
	Cols       int
	Rows       int
	ScreenSize int

	// Symbol 設定的預處理資料
	symbolCount int
	wildMask    SymbolMask // Wild符號遮罩
	paidMask    SymbolMask // 具有派彩的符號遮罩
	payFlat     []uint64   // 平坦化的派彩表
	payIdx      []int      // 派彩表索引

	// Line 熱路徑資料
	lineCount int
	lineFlat  []int16 // 平坦化的線表（盤面索引）
	lineIdx   []int

	evalFn evalFn
}

// NewEvaluator 建立算分器；設定必須已通過 Init。
func NewEvaluator(ms *spec.MachineSetting) *Evaluator {
	ev := &Evaluator{
		Cols:        ms.Reel.Columns,
		Rows:        ms.Reel.Rows,
		ScreenSize:  ms.Reel.Columns * ms.Reel.Rows,
		symbolCount: ms.Paytable.SymbolCount,
		wildMask:    ms.Paytable.WildMask,
		payFlat:     ms.Paytable.PayTableFlat,
		payIdx:      ms.Paytable.PayTableIndex,
	}

	// paidMask : 具有派彩的符號遮罩
	for i, row := range ms.Paytable.PayTable {
		for _, v := range row {
			if v > 0 {
				ev.paidMask |= 1 << uint(i)
				break
			}
		}
	}

	// LineTableFlat 與 LineTableIndex
	cols := ms.Reel.Columns
	ev.lineCount = len(ms.Payline.LineTable)
	ev.lineFlat = make([]int16, ev.lineCount*cols)
	ev.lineIdx = make([]int, ev.lineCount)
	write := 0
	for i, line := range ms.Payline.LineTable {
		ev.lineIdx[i] = write
		for c, r := range line {
			ev.lineFlat[write+c] = int16(int(r)*cols + c)
		}
		write += cols
	}

	if fn, ok := fromMachineTypeGetEvalFn[ms.MachineType]; ok {
		ev.evalFn = fn
	} else {
		log.Fatalf("miss match machine type %v to eval function", ms.MachineType)
	}
	return ev
}

// Evaluate 對盤面算分。
//
// stakePerUnit 為單線（或 ways 機台的整盤）押注；lineCount 為啟用線數，
// ways 機台忽略。回傳值每次配置新切片：結果會被 spin 長期保留，
// 不能重用緩衝。
func (ev *Evaluator) Evaluate(stakePerUnit uint64, lineCount int, screen []int16) Result {
	return ev.evalFn(ev, stakePerUnit, lineCount, screen)
}
