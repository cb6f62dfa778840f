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

package spec

import (
	"fmt"

	"github.com/zintix-labs/chainspin/errs"
)

// PaytableSetting 統整圖標字母表與賠率表，並記錄衍生屬性。
//
// Fields:
//   - SymbolUsedStr: 圖標字母表，一個圖標一個字元（必須與輪帶字串使用同一字元集）。
//   - PayTable: 每圖標一列，PayTable[s][n-1] 為「連線長度 n」的賠率倍數；
//     倍數為整數，派彩 = 單線押注 × 倍數，全程整數運算（不允許浮點，避免與鏈上整數數學產生捨入漂移）。
//   - Wilds: 可代任圖標（可留空）。
//
// 衍生欄位：
//   - SymbolIndex: 字元 → 圖標索引。
//   - PayTableFlat / PayTableIndex: 平坦化賠率表（熱路徑查表用）。
//   - MaxMultiplier: 全表最大倍數（派彩上限檢查用）。
type PaytableSetting struct {
	SymbolUsedStr []string   `yaml:"symbol_used"  json:"symbol_used"`
	PayTable      [][]uint64 `yaml:"pay_table"    json:"pay_table"`
	Wilds         []string   `yaml:"wilds"        json:"wilds"`

	SymbolCount   int            `yaml:"-"  json:"-"`
	SymbolIndex   map[byte]int16 `yaml:"-"  json:"-"`
	PayTableFlat  []uint64       `yaml:"-"  json:"-"`
	PayTableIndex []int          `yaml:"-"  json:"-"`
	WildMask      uint64         `yaml:"-"  json:"-"`
	MaxMultiplier uint64         `yaml:"-"  json:"-"`
	initFlag      bool
}

// Init 檢查設定並賦值；cols 來自 ReelSetting（賠率列長度必須等於軸數）。
func (ps *PaytableSetting) Init(cols int) error {
	// 檢查初始化旗標
	if ps.initFlag {
		return nil
	}
	if len(ps.SymbolUsedStr) == 0 {
		return errs.NewFatal("symbol_used is empty")
	}
	if len(ps.SymbolUsedStr) > 64 {
		return errs.NewFatal("symbol alphabet exceeds 64 (mask width)")
	}
	if len(ps.PayTable) != len(ps.SymbolUsedStr) {
		return errs.NewFatal("len(symbol_used) != len(pay_table)")
	}

	// 解析字母表
	ps.SymbolIndex = make(map[byte]int16, len(ps.SymbolUsedStr))
	for i, s := range ps.SymbolUsedStr {
		if len(s) != 1 {
			return errs.NewFatal(fmt.Sprintf("symbol %q must be a single character", s))
		}
		ch := s[0]
		if _, dup := ps.SymbolIndex[ch]; dup {
			return errs.NewFatal(fmt.Sprintf("duplicate symbol %q", s))
		}
		ps.SymbolIndex[ch] = int16(i)
	}

	// 平坦化賠率表
	ps.PayTableFlat = make([]uint64, len(ps.SymbolUsedStr)*cols)
	ps.PayTableIndex = make([]int, len(ps.SymbolUsedStr))
	write := 0
	for rowIdx, payRow := range ps.PayTable {
		if len(payRow) != cols {
			return errs.NewFatal(fmt.Sprintf("pay_table row %d length %d != columns %d", rowIdx, len(payRow), cols))
		}
		ps.PayTableIndex[rowIdx] = write
		for i, v := range payRow {
			ps.PayTableFlat[write+i] = v
			if v > ps.MaxMultiplier {
				ps.MaxMultiplier = v
			}
		}
		write += cols
	}

	// wild 遮罩
	for _, w := range ps.Wilds {
		if len(w) != 1 {
			return errs.NewFatal(fmt.Sprintf("wild %q must be a single character", w))
		}
		idx, ok := ps.SymbolIndex[w[0]]
		if !ok {
			return errs.NewFatal(fmt.Sprintf("wild %q not in symbol_used", w))
		}
		ps.WildMask |= 1 << uint(idx)
	}

	ps.SymbolCount = len(ps.SymbolUsedStr)
	// set 初始化旗標
	ps.initFlag = true
	return nil
}

// Multiplier 查表回傳 (圖標, 連線長度) 的倍數；長度越界回傳 0。
func (ps *PaytableSetting) Multiplier(sym int16, run int) uint64 {
	if sym < 0 || int(sym) >= ps.SymbolCount {
		return 0
	}
	if run < 1 || run > len(ps.PayTable[sym]) {
		return 0
	}
	return ps.PayTableFlat[ps.PayTableIndex[sym]+(run-1)]
}
