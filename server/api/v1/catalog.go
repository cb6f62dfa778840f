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

package v1

import (
	"net/http"

	"github.com/zintix-labs/chainspin/catalog"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/server/httperr"
	"github.com/zintix-labs/chainspin/server/svrcfg"
)

// CatalogHandler 服務機台目錄的唯讀端點。
type CatalogHandler struct {
	cat *catalog.Catalog
}

func NewCatalogHandler(sCfg *svrcfg.SvrCfg) (*CatalogHandler, error) {
	if sCfg == nil || sCfg.Catalog == nil {
		return nil, errs.NewWarn("catalog is not configured")
	}
	return &CatalogHandler{cat: sCfg.Catalog}, nil
}

// Machines 列出所有已註冊機台的摘要。
func (c *CatalogHandler) Machines(w http.ResponseWriter, _ *http.Request) {
	sums, err := c.cat.Summaries()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sums)
}
