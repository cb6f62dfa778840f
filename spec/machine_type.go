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

// GID 為機台編號（catalog 內唯一；用於路由與查表）。
type GID uint

// MachineType 定義機台的算分形態，對應鏈上合約的兩種變體。
//
//   - MachineTypeFixedLine : 固定線表，逐線檢查指定格位。
//   - MachineTypeWays      : ways-to-win，每軸任意位置皆可連線。
//
// 送出/claim 的交易協定在兩種變體間完全相同，僅盤面評分方式不同。
type MachineType int

const (
	MachineTypeFixedLine MachineType = iota
	MachineTypeWays
)

var machineTypeMap = map[string]MachineType{
	"fixed_line": MachineTypeFixedLine,
	"ways":       MachineTypeWays,
}

var machineTypeName = map[MachineType]string{
	MachineTypeFixedLine: "fixed_line",
	MachineTypeWays:      "ways",
}

func ParseMachineType(s string) (MachineType, bool) {
	mt, ok := machineTypeMap[s]
	return mt, ok
}

// String 回傳設定檔使用的字串形式。
func (mt MachineType) String() string {
	if s, ok := machineTypeName[mt]; ok {
		return s
	}
	return "unknown"
}

// NetworkMode 決定 adapter 的實際後端。
//
//   - NetworkSimulated : 記憶體帳本，無網路（測試/模擬）。
//   - NetworkLocal / NetworkTestnet / NetworkMainnet : 真實帳本端點（由注入的 ledger.Client 決定細節）。
type NetworkMode int

const (
	NetworkSimulated NetworkMode = iota
	NetworkLocal
	NetworkTestnet
	NetworkMainnet
)

var networkModeMap = map[string]NetworkMode{
	"simulated": NetworkSimulated,
	"local":     NetworkLocal,
	"testnet":   NetworkTestnet,
	"mainnet":   NetworkMainnet,
}

func ParseNetworkMode(s string) (NetworkMode, bool) {
	nm, ok := networkModeMap[s]
	return nm, ok
}
