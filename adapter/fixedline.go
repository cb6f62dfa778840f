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

package adapter

import (
	"context"

	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/ledger"
	"github.com/zintix-labs/chainspin/spec"
)

// LiveFixedLine 是固定線機台的 live adapter。
// 與 LiveWays 的送出/claim 協定完全相同，只有盤面評分方式不同
// （評分方式由抓回來的合約設定決定，這裡只驗證機台型態相符）。
type LiveFixedLine struct {
	liveAdapter
}

var _ MachineAdapter = (*LiveFixedLine)(nil)

// NewLiveFixedLine 建立固定線 live adapter。
func NewLiveFixedLine(client ledger.Client, signer ledger.WalletSigner, appID uint64) *LiveFixedLine {
	return &LiveFixedLine{liveAdapter{client: client, signer: signer, appID: appID}}
}

// Initialize 額外驗證合約宣告的機台型態是固定線。
func (a *LiveFixedLine) Initialize(ctx context.Context) error {
	if err := a.liveAdapter.Initialize(ctx); err != nil {
		return err
	}
	if a.setting.MachineType != spec.MachineTypeFixedLine {
		return errs.Kindf(errs.KindNotInitialized, "contract machine type %s, adapter expects fixed_line", a.setting.MachineType)
	}
	return nil
}
