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

// Package sampler 提供加權抽樣工具。
//
// 本檔案 (lut.go) 實作查找表 (Look-Up Table) 加權抽樣：
//   - 空間換時間：將權重展開為長陣列，每個索引出現次數等於其權重。
//   - 建表 O(sum(weights))，抽樣 O(1)（一次 IntN）。
//
// 模擬器用它抽押注檔位與線數分佈；權重總和很小，LUT 是最快也最簡單的選擇。

package sampler

import (
	"fmt"
	"math"

	"github.com/zintix-labs/chainspin/sdk/core"
)

const maxLUTCap uint64 = 10_000_000 // 約 80MB (int slice)

// LUT 是展開後的加權查找表。
//
// 例：三個檔位權重 [3,5,0] → [0,0,0,1,1,1,1,1]；
// 直接抽一個索引即符合 3/8、5/8、0/8 的抽樣機率。
type LUT []int

// BuildLUT 根據權重列表建立查找表。
//
// src 為任意非負整數權重列表，遇到負權重會 panic。
func BuildLUT[T Integers](src []T) LUT {
	if len(src) == 0 {
		return []int{}
	}

	acc := uint64(0)
	// 累加權重總和，用於預估 LUT 長度並避免 overflow
	for _, v := range src {
		if v < 0 {
			panic("lut: negative value encountered")
		}
		uv := uint64(v)
		if acc > math.MaxUint64-uv {
			panic("lut: total weight overflow uint64 range")
		}
		acc += uv
	}

	if acc == 0 {
		panic("lut: all weights are zero")
	}

	if acc > maxLUTCap {
		panic(fmt.Sprintf("lut: total weight %d exceeds limit %d", acc, maxLUTCap))
	}

	lut := make([]int, 0, int(acc))
	for i, v := range src {
		// 將索引 i 重複寫入 v 次，建立展開後的查找表
		for j := T(0); j < v; j++ {
			lut = append(lut, i)
		}
	}
	return lut
}

// Pick 會透過 Core 的 RNG 從 LUT 中隨機位置取一個值
// 若 lut 為空，回傳 -1
func (l LUT) Pick(c *core.Core) int {
	return c.Pick(l)
}
