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

// PaylineSetting 描述固定線表。
//
// LineTable 每條線是一組「每軸取哪一列」的索引（長度 = 軸數）。
// 例：5 軸機台的中線為 [1,1,1,1,1]。
// ways 機台不使用線表，LineTable 留空即可。
type PaylineSetting struct {
	LineTable [][]int16 `yaml:"line_table"  json:"line_table"`
	LineCount int       `yaml:"-"           json:"-"`
	initFlag  bool
}

// Init 依盤面尺寸驗證線表；cols/rows 來自 ReelSetting。
func (ps *PaylineSetting) Init(cols, rows int) error {
	if ps.initFlag {
		return nil
	}
	for i, line := range ps.LineTable {
		if len(line) != cols {
			return errs.NewFatal(fmt.Sprintf("payline %d length %d != columns %d", i, len(line), cols))
		}
		for c, r := range line {
			if r < 0 || int(r) >= rows {
				return errs.NewFatal(fmt.Sprintf("payline %d column %d row %d out of window", i, c, r))
			}
		}
	}
	ps.LineCount = len(ps.LineTable)
	ps.initFlag = true
	return nil
}
