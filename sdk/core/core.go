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

package core

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// bounded 生成（UintN/IntN）交由 PRNG 自己實作，
// 讓每個 PRNG 用對自己最合適的 fast path。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

type PRNGFactory interface {
	// New 以指定 seed 建立新的 PRNG。
	//
	// 合約（很重要）：在同一個實作與同一個版本下，New(seed) 必須是「決定性」的——
	// 相同的 seed 必須產生相同的初始內部狀態與輸出序列。
	//
	// 帳本模擬與大量模擬都依賴可重現性：外部未提供 seed 時由上層產生並
	// 保存 baseSeed，後續所有派生 seed 皆由 baseSeed 以固定算法導出。
	New(int64) PRNG
}

// DefaultPRNG 實作預設的 PRNGFactory
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return NewPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 PRNG，並提供常用取樣與工具方法。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
// 熱路徑中只使用哨兵值回傳
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	idx := c.IntN(len(src))
	return src[idx]
}
