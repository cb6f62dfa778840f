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

package svrcfg

import (
	"log/slog"

	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/catalog"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/server/logger"
)

// SvrCfg 是 server 組裝需要的全部依賴。
// Catalog 可為 nil：沒有設定目錄時 /machines 端點回 404 即可。
type SvrCfg struct {
	Log     *slog.Logger
	Engine  *chainspin.Engine
	Catalog *catalog.Catalog
}

func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 保持安靜、合法
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}

	if sc.Engine == nil {
		return errs.NewFatal("spin engine is required")
	}
	return nil
}
