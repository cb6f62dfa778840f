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

// ReelSetting 描述輪帶佈局。
//
// Fields:
//   - Strips: 每軸一條輪帶字串，一個字元代表一個停點的圖標；
//     這條字串必須與鏈上合約儲存的輪帶完全一致（逐字元），否則本地回算會與鏈上結果不一致。
//   - Rows: 可見視窗高度（盤面列數）。
//
// 衍生欄位：
//   - Columns: 軸數（len(Strips)）。
//   - ReelLength: 單軸停點數；所有軸長度必須一致（合約以單一 reel length 取模）。
type ReelSetting struct {
	Strips     []string `yaml:"strips"  json:"strips"`
	Rows       int      `yaml:"rows"    json:"rows"`
	Columns    int      `yaml:"-"       json:"-"`
	ReelLength int      `yaml:"-"       json:"-"`
	initFlag   bool
}

// Init 檢查不合法的設定
func (rs *ReelSetting) Init() error {
	// 檢查初始化旗標
	if rs.initFlag {
		return nil
	}
	if len(rs.Strips) == 0 {
		return errs.NewFatal("reel strips are empty")
	}
	if rs.Rows <= 0 {
		return errs.NewFatal("reel window rows must be > 0")
	}
	length := len(rs.Strips[0])
	if length == 0 {
		return errs.NewFatal("reel strip 0 is empty")
	}
	for i, strip := range rs.Strips {
		if len(strip) != length {
			return errs.NewFatal(fmt.Sprintf("reel strip %d length %d != %d (all strips must match)", i, len(strip), length))
		}
	}
	if rs.Rows > length {
		return errs.NewFatal("window rows exceed reel length")
	}
	rs.Columns = len(rs.Strips)
	rs.ReelLength = length
	rs.initFlag = true
	return nil
}
