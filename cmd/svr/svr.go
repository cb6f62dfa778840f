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

package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/adapter"
	"github.com/zintix-labs/chainspin/catalog"
	"github.com/zintix-labs/chainspin/demo/demo_configs"
	"github.com/zintix-labs/chainspin/ledger"
	"github.com/zintix-labs/chainspin/server"
	"github.com/zintix-labs/chainspin/server/logger"
	"github.com/zintix-labs/chainspin/server/netsvr"
	"github.com/zintix-labs/chainspin/server/svrcfg"
	"github.com/zintix-labs/chainspin/spec"
)

// simRoundDuration 是模擬鏈的出塊間隔。
const simRoundDuration = 500 * time.Millisecond

// 這是實驗室伺服器進入點：用模擬 adapter 驅動內嵌的示範機台。
// 正式部署自備 ledger client 與簽章錢包，在獨立的組裝專案裡
// 向同一個 adapter.Factory 要 live 變體。
func main() {
	cfg := loadFlags()

	log, h := logger.NewAsync(4096, cfg.norm())
	defer h.Close()

	srcs := []fs.FS{demo_configs.FS}
	if cfg.ConfigDir != "" {
		srcs = append(srcs, os.DirFS(cfg.ConfigDir))
	}
	cat, err := catalog.New(srcs...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if err := cat.Discover(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	cat.Freeze()

	ms, err := cat.MachineSettingByName(cfg.Game)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}

	fac := adapter.NewFactory(nil, ledger.WalletSigner{})
	ad, err := fac.Adapter(adapter.MachineRef{
		GameID:      ms.GameID,
		MachineType: ms.MachineType,
		Network:     spec.NetworkSimulated,
		Setting:     ms,
		Balance:     cfg.Balance,
		BaseSeed:    cfg.Seed,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if err := ad.Initialize(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	// 引擎靠輪詢等待 claim 回合，模擬鏈要開時鐘才會自然出塊
	if sim, ok := ad.(*adapter.Simulated); ok {
		sim.StartClock(simRoundDuration)
	}

	eng, err := chainspin.NewEngine(ad, log, nil, chainspin.Config{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer eng.Close()

	sCfg := &svrcfg.SvrCfg{
		Log:     log,
		Engine:  eng,
		Catalog: cat,
	}
	server.RunWithSvr(sCfg, netsvr.NewChiServer(cfg.Addr))
}

type config struct {
	LogMode   string
	Addr      string
	Game      string
	ConfigDir string
	Balance   uint64
	Seed      int64
}

func loadFlags() *config {
	cfg := new(config)
	flag.StringVar(&cfg.LogMode, "log-mode", "ModeDev", "log mode: ModeDev|ModeProd|ModeSilence")
	flag.StringVar(&cfg.Addr, "addr", ":6709", "listen address")
	flag.StringVar(&cfg.Game, "game", "neon_lines", "target game name")
	flag.StringVar(&cfg.ConfigDir, "config", "", "extra machine config dir (flat, yaml/json)")
	flag.Uint64Var(&cfg.Balance, "balance", 10_000_000_000, "simulated wallet balance (smallest unit)")
	flag.Int64Var(&cfg.Seed, "seed", 1, "simulated ledger seed")
	flag.Parse()
	return cfg
}

func (cfg *config) norm() logger.LogMode {
	switch cfg.LogMode {
	case "ModeDev":
		return logger.ModeDev
	case "ModeProd":
		return logger.ModeProd
	case "ModeSilence":
		return logger.ModeSilence
	default:
		return logger.ModeDev
	}
}
