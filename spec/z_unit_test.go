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
	"errors"
	"strings"
	"testing"

	"github.com/zintix-labs/chainspin/errs"
)

const fixedLineYAML = `
game_name: demo_lines
game_id: 1
machine_type: fixed_line
app_id: 4242
min_stake_per_unit: 1000
max_stake_per_unit: 10000000
reel:
  strips:
    - "AAABBBCCCDDDEEE"
    - "BBBCCCDDDEEEAAA"
    - "CCCDDDEEEAAABBB"
    - "DDDEEEAAABBBCCC"
    - "EEEAAABBBCCCDDD"
  rows: 3
paytable:
  symbol_used: ["A", "B", "C", "D", "E"]
  pay_table:
    - [0, 0, 50, 500, 10000]
    - [0, 0, 25, 100, 1000]
    - [0, 0, 10, 50, 200]
    - [0, 0, 5, 20, 100]
    - [0, 0, 2, 10, 50]
payline:
  line_table:
    - [1, 1, 1, 1, 1]
    - [0, 0, 0, 0, 0]
    - [2, 2, 2, 2, 2]
    - [0, 1, 2, 1, 0]
    - [2, 1, 0, 1, 2]
`

func TestGetMachineSettingByYAML(t *testing.T) {
	ms, err := GetMachineSettingByYAML([]byte(fixedLineYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.MachineType != MachineTypeFixedLine {
		t.Fatalf("expected fixed_line, got %v", ms.MachineType)
	}
	if ms.Reel.Columns != 5 || ms.Reel.Rows != 3 || ms.Reel.ReelLength != 15 {
		t.Fatalf("unexpected reel geometry: cols=%d rows=%d len=%d", ms.Reel.Columns, ms.Reel.Rows, ms.Reel.ReelLength)
	}
	if ms.Payline.LineCount != 5 || ms.MaxLines != 5 {
		t.Fatalf("unexpected line count: %d maxLines=%d", ms.Payline.LineCount, ms.MaxLines)
	}
	if ms.Paytable.MaxMultiplier != 10000 {
		t.Fatalf("expected max multiplier 10000, got %d", ms.Paytable.MaxMultiplier)
	}
	if got := ms.Paytable.Multiplier(0, 5); got != 10000 {
		t.Fatalf("expected A x5 = 10000, got %d", got)
	}
	if got := ms.Paytable.Multiplier(1, 3); got != 25 {
		t.Fatalf("expected B x3 = 25, got %d", got)
	}
	if got := ms.Paytable.Multiplier(0, 2); got != 0 {
		t.Fatalf("expected A x2 = 0, got %d", got)
	}
}

func TestMachineSettingInitRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(s string) string
		wantSub string
	}{
		{
			name:    "unknown machine type",
			mutate:  func(s string) string { return strings.Replace(s, "fixed_line", "cascade", 1) },
			wantSub: "machine_type",
		},
		{
			name:    "uneven strips",
			mutate:  func(s string) string { return strings.Replace(s, `"EEEAAABBBCCCDDD"`, `"EEE"`, 1) },
			wantSub: "strip",
		},
		{
			name:    "symbol missing from alphabet",
			mutate:  func(s string) string { return strings.Replace(s, `"AAABBBCCCDDDEEE"`, `"XAABBBCCCDDDEEE"`, 1) },
			wantSub: "symbol",
		},
		{
			name:    "payline row out of window",
			mutate:  func(s string) string { return strings.Replace(s, "- [2, 1, 0, 1, 2]", "- [3, 1, 0, 1, 2]", 1) },
			wantSub: "payline",
		},
		{
			name:    "pay table row too short",
			mutate:  func(s string) string { return strings.Replace(s, "- [0, 0, 2, 10, 50]", "- [0, 0, 2]", 1) },
			wantSub: "pay_table",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := GetMachineSettingByYAML([]byte(tc.mutate(fixedLineYAML)))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.wantSub)
			}
		})
	}
}

func TestMachineSettingWaysVariant(t *testing.T) {
	yamlDoc := strings.Replace(fixedLineYAML, "machine_type: fixed_line", "machine_type: ways", 1)
	yamlDoc = yamlDoc[:strings.Index(yamlDoc, "payline:")] + "payline:\n  line_table: []\n"

	ms, err := GetMachineSettingByYAML([]byte(yamlDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.MachineType != MachineTypeWays {
		t.Fatalf("expected ways, got %v", ms.MachineType)
	}
	if ms.MaxLines != 1 {
		t.Fatalf("ways machine should normalize MaxLines to 1, got %d", ms.MaxLines)
	}
}

func TestValidateBet(t *testing.T) {
	ms, err := GetMachineSettingByYAML([]byte(fixedLineYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ms.ValidateBet(1_000_000, 20); err == nil {
		t.Fatal("expected line-count rejection (machine has 5 lines)")
	}
	if err := ms.ValidateBet(1_000_000, 5); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	// 押注超出範圍是參數驗證問題，不是錢包餘額問題：
	// insufficient_balance 保留給送出前的餘額檢查
	err = ms.ValidateBet(500, 5)
	if err == nil {
		t.Fatal("expected stake-below-min rejection")
	}
	if errs.IsKind(err, errs.KindInsufficientBalance) {
		t.Fatalf("stake-range rejection misclassified as insufficient_balance: %v", err)
	}
	var e *errs.E
	if !errors.As(err, &e) || e.ErrLv != errs.Warn {
		t.Fatalf("stake-range rejection should be a caller warn, got %v", err)
	}
}
