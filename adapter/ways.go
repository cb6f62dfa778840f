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

// LiveWays 是 ways-to-win 機台的 live adapter。
type LiveWays struct {
	liveAdapter
}

var _ MachineAdapter = (*LiveWays)(nil)

// NewLiveWays 建立 ways live adapter。
func NewLiveWays(client ledger.Client, signer ledger.WalletSigner, appID uint64) *LiveWays {
	return &LiveWays{liveAdapter{client: client, signer: signer, appID: appID}}
}

// Initialize 額外驗證合約宣告的機台型態是 ways。
func (a *LiveWays) Initialize(ctx context.Context) error {
	if err := a.liveAdapter.Initialize(ctx); err != nil {
		return err
	}
	if a.setting.MachineType != spec.MachineTypeWays {
		return errs.Kindf(errs.KindNotInitialized, "contract machine type %s, adapter expects ways", a.setting.MachineType)
	}
	return nil
}
