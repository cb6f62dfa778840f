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

// MachineSetting 是一台機台的完整設定（設定檔反序列化的根節點）。
//
// 輪帶、賠率表與線表必須與目標合約內存的版本完全一致；
// 本地只做「回算與驗證」，不是權威結果來源。
type MachineSetting struct {
	GameName        string `yaml:"game_name"          json:"game_name"`
	GameID          GID    `yaml:"game_id"            json:"game_id"`
	MachineTypeStr  string `yaml:"machine_type"       json:"machine_type"`
	AppID           uint64 `yaml:"app_id"             json:"app_id"`
	MinStakePerUnit uint64 `yaml:"min_stake_per_unit" json:"min_stake_per_unit"`
	MaxStakePerUnit uint64 `yaml:"max_stake_per_unit" json:"max_stake_per_unit"`
	MaxLines        int    `yaml:"max_lines"          json:"max_lines"`

	Reel     ReelSetting     `yaml:"reel"     json:"reel"`
	Paytable PaytableSetting `yaml:"paytable" json:"paytable"`
	Payline  PaylineSetting  `yaml:"payline"  json:"payline"`

	MachineType MachineType `yaml:"-" json:"-"`
	initFlag    bool
}

// Init 檢查不合法的設定並計算衍生屬性。
// 重複呼叫為 no-op（已初始化的設定不會被改動）。
func (ms *MachineSetting) Init() error {
	// 檢查初始化旗標
	if ms.initFlag {
		return nil
	}
	if ms.GameName == "" {
		return errs.NewFatal("game_name is empty")
	}
	mt, ok := ParseMachineType(ms.MachineTypeStr)
	if !ok {
		return errs.NewFatal(fmt.Sprintf("unknown machine_type %q", ms.MachineTypeStr))
	}
	ms.MachineType = mt

	if ms.MinStakePerUnit == 0 {
		return errs.NewFatal("min_stake_per_unit must be > 0")
	}
	if ms.MaxStakePerUnit < ms.MinStakePerUnit {
		return errs.NewFatal("max_stake_per_unit < min_stake_per_unit")
	}

	if err := ms.Reel.Init(); err != nil {
		return errs.Wrap(err, fmt.Sprintf("machine %s reel", ms.GameName))
	}
	if err := ms.Paytable.Init(ms.Reel.Columns); err != nil {
		return errs.Wrap(err, fmt.Sprintf("machine %s paytable", ms.GameName))
	}

	// 確認輪帶字元都在字母表內
	for i, strip := range ms.Reel.Strips {
		for pos := 0; pos < len(strip); pos++ {
			if _, ok := ms.Paytable.SymbolIndex[strip[pos]]; !ok {
				return errs.NewFatal(fmt.Sprintf("reel %d stop %d symbol %q not in symbol_used", i, pos, string(strip[pos])))
			}
		}
	}

	switch ms.MachineType {
	case MachineTypeFixedLine:
		if err := ms.Payline.Init(ms.Reel.Columns, ms.Reel.Rows); err != nil {
			return errs.Wrap(err, fmt.Sprintf("machine %s payline", ms.GameName))
		}
		if ms.Payline.LineCount == 0 {
			return errs.NewFatal("fixed_line machine requires a non-empty line_table")
		}
		if ms.MaxLines <= 0 || ms.MaxLines > ms.Payline.LineCount {
			ms.MaxLines = ms.Payline.LineCount
		}
	case MachineTypeWays:
		if len(ms.Payline.LineTable) != 0 {
			return errs.NewFatal("ways machine must not carry a line_table")
		}
		// ways 的「單位」是整盤押注，視為一線
		ms.MaxLines = 1
	}

	// set 初始化旗標
	ms.initFlag = true
	return nil
}

// Initialized 回報設定是否已通過 Init 驗證。
func (ms *MachineSetting) Initialized() bool { return ms.initFlag }

// ValidateBet 檢查押注參數是否落在機台允許範圍。
func (ms *MachineSetting) ValidateBet(stakePerUnit uint64, lineCount int) error {
	if !ms.initFlag {
		return errs.NewKind(errs.KindNotInitialized, "machine setting not initialized")
	}
	if stakePerUnit < ms.MinStakePerUnit || stakePerUnit > ms.MaxStakePerUnit {
		return errs.Warnf("stake per unit %d outside [%d, %d]",
			stakePerUnit, ms.MinStakePerUnit, ms.MaxStakePerUnit)
	}
	if lineCount < 1 || lineCount > ms.MaxLines {
		return errs.Warnf("line count %d outside [1, %d]", lineCount, ms.MaxLines)
	}
	return nil
}
