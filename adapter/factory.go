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
	"sync"

	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/ledger"
	"github.com/zintix-labs/chainspin/spec"
)

// BuilderFn 建立一個 live adapter 變體。
type BuilderFn func(client ledger.Client, signer ledger.WalletSigner, appID uint64) MachineAdapter

// MachineRef 描述 Factory 要建立哪台機台的 adapter。
type MachineRef struct {
	GameID      spec.GID
	MachineType spec.MachineType
	Network     spec.NetworkMode
	AppID       uint64

	// 以下只有 NetworkSimulated 使用
	Setting  *spec.MachineSetting
	Balance  uint64
	BaseSeed int64
}

// Factory 依機台型態選擇 adapter 變體。
//
// 由組裝點（composition root）明確建構並以參考傳遞——
// 沒有任何模組層級的可變單例。同一個 GameID 的 adapter 會被快取，
// 確保設定「每個 adapter 生命週期最多抓取一次」。
type Factory struct {
	client ledger.Client
	signer ledger.WalletSigner

	mu       sync.Mutex
	builders map[spec.MachineType]BuilderFn
	cache    map[spec.GID]MachineAdapter
}

// NewFactory 建立帶預設變體註冊表的 Factory。
// client/signer 在純模擬部署下可為零值。
func NewFactory(client ledger.Client, signer ledger.WalletSigner) *Factory {
	f := &Factory{
		client:   client,
		signer:   signer,
		builders: make(map[spec.MachineType]BuilderFn),
		cache:    make(map[spec.GID]MachineAdapter),
	}
	f.Register(spec.MachineTypeFixedLine, func(c ledger.Client, s ledger.WalletSigner, appID uint64) MachineAdapter {
		return NewLiveFixedLine(c, s, appID)
	})
	f.Register(spec.MachineTypeWays, func(c ledger.Client, s ledger.WalletSigner, appID uint64) MachineAdapter {
		return NewLiveWays(c, s, appID)
	})
	return f
}

// Register 註冊（或覆蓋）機台型態對應的 live 變體。
func (f *Factory) Register(mt spec.MachineType, b BuilderFn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[mt] = b
}

// Adapter 取得（或建立並快取）機台的 adapter。
func (f *Factory) Adapter(ref MachineRef) (MachineAdapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if a, ok := f.cache[ref.GameID]; ok {
		return a, nil
	}

	var a MachineAdapter
	if ref.Network == spec.NetworkSimulated {
		if ref.Setting == nil {
			return nil, errs.NewFatal("simulated adapter requires an injected machine setting")
		}
		a = NewSimulated(ref.Setting, ref.Balance, ref.BaseSeed)
	} else {
		if f.client == nil {
			return nil, errs.NewFatal("live adapter requires a ledger client")
		}
		b, ok := f.builders[ref.MachineType]
		if !ok {
			return nil, errs.Fatalf("no adapter variant registered for machine type %s", ref.MachineType)
		}
		a = b(f.client, f.signer, ref.AppID)
	}

	f.cache[ref.GameID] = a
	return a, nil
}
