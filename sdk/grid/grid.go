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

// Package grid 由 (投注承諾, 區塊種子, 輪帶佈局) 決定性地產生盤面。
//
// 這是公平性的核心：同一組輸入必須永遠產生同一個盤面，
// 而且停點推導必須與合約逐位元一致，否則本地回算會與鏈上
// claim 結果不一致。產生器本身是純函式——沒有 I/O、沒有自己的
// 亂數，所有 entropy 都來自 seed 參數。
package grid

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/spec"
)

// SeedSize 是帳本區塊種子的長度（由區塊頭衍生的 32-byte 值）。
const SeedSize = 32

// Generator 保存生成盤面所需的所有狀態。
// 建構時將輪帶字串預先轉為圖標索引，讓熱路徑免查 map。
type Generator struct {
	Cols       int
	Rows       int
	ReelLength int
	// reels[col][stop] = 圖標索引（從 Strips 經 SymbolIndex 預先轉換）
	reels [][]int16
}

// NewGenerator 根據機台設定建立生成器；設定必須已通過 Init。
func NewGenerator(ms *spec.MachineSetting) (*Generator, error) {
	if !ms.Initialized() {
		return nil, errs.NewKind(errs.KindNotInitialized, "machine setting not initialized")
	}

	g := &Generator{
		Cols:       ms.Reel.Columns,
		Rows:       ms.Reel.Rows,
		ReelLength: ms.Reel.ReelLength,
		reels:      make([][]int16, ms.Reel.Columns),
	}
	for col, strip := range ms.Reel.Strips {
		symbols := make([]int16, len(strip))
		for pos := 0; pos < len(strip); pos++ {
			symbols[pos] = ms.Paytable.SymbolIndex[strip[pos]]
		}
		g.reels[col] = symbols
	}
	return g, nil
}

// Stops 推導每一軸的停點。
//
// 停點公式（與合約一致，逐位元）：
//
//	stop[i] = Uint64BE(SHA-512/256(seed ‖ betKey ‖ byte(i))[:8]) mod reelLength
//
// 每軸用獨立的 domain-separated 雜湊，避免相鄰軸之間的停點相關性。
func (g *Generator) Stops(betKey []byte, seed []byte) []int {
	stops := make([]int, g.Cols)
	buf := make([]byte, 0, len(seed)+len(betKey)+1)
	for col := 0; col < g.Cols; col++ {
		buf = buf[:0]
		buf = append(buf, seed...)
		buf = append(buf, betKey...)
		buf = append(buf, byte(col))
		digest := sha512.Sum512_256(buf)
		stops[col] = int(binary.BigEndian.Uint64(digest[:8]) % uint64(g.ReelLength))
	}
	return stops
}

// Generate 產生盤面（row-major：screen[row*cols+col]）。
//
// 每次呼叫配置新的盤面切片：spin 的結果會被長期保留，
// 不能像模擬熱路徑那樣重用緩衝。
func (g *Generator) Generate(betKey []byte, seed []byte) []int16 {
	cols := g.Cols
	rows := g.Rows
	length := g.ReelLength
	stops := g.Stops(betKey, seed)

	s := make([]int16, cols*rows)
	_ = s[(rows-1)*cols+(cols-1)] // BCE hint

	for col := 0; col < cols; col++ {
		reel := g.reels[col]
		stop := stops[col]
		for row := 0; row < rows; row++ {
			s[(row*cols)+col] = reel[(stop+row)%length]
		}
	}
	return s
}
