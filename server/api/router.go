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

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	v1 "github.com/zintix-labs/chainspin/server/api/v1"
	"github.com/zintix-labs/chainspin/server/netsvr"
	"github.com/zintix-labs/chainspin/server/netsvr/middleware"
	"github.com/zintix-labs/chainspin/server/svrcfg"
)

// RegisterRoutes 註冊
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	registerIndex(svr)                // 2. 註冊主頁
	return registerV1API(svr, sCfg)   // 3. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover)
	svr.Use(middleware.Compression)
}

// 註冊主頁
func registerIndex(svr netsvr.NetSvr) {
	svr.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"service": "chainspin",
			"api":     "/v1",
		})
	})
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	s, err := v1.NewSpinHandler(sCfg)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Post("/spin", s.Submit)
		vOne.Get("/spin/{id}", s.Get)
		vOne.Get("/spin/{id}/wait", s.Wait)
		vOne.Get("/queue", s.Queue)
		vOne.Get("/config", s.Config)
		vOne.Get("/balance", s.Balance)

		// 目錄端點只有配置了 catalog 才掛
		if c, err := v1.NewCatalogHandler(sCfg); err == nil {
			vOne.Get("/machines", c.Machines)
		}
	})
	return nil
}
