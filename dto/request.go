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

package dto

import "github.com/zintix-labs/chainspin/errs"

// SpinRequest 是押注請求的傳輸形式。
// 這裡只做形狀檢查；額度/線數上限由機台設定在送出前驗證。
type SpinRequest struct {
	StakePerLine uint64 `json:"stake_per_line"`
	LineCount    int    `json:"line_count"`
}

func (r *SpinRequest) Validate() error {
	if r.StakePerLine == 0 {
		return errs.NewWarn("stake_per_line must be positive")
	}
	if r.LineCount <= 0 {
		return errs.NewWarn("line_count must be positive")
	}
	return nil
}
