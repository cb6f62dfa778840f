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

// Package demo 提供內嵌示範機台的快速組裝入口，給 lab server 與模擬器用。
package demo

import (
	"github.com/zintix-labs/chainspin/catalog"
	"github.com/zintix-labs/chainspin/demo/demo_configs"
	"github.com/zintix-labs/chainspin/errs"
)

// NewCatalog 建立已註冊全部示範機台的目錄（已凍結）。
func NewCatalog() (*catalog.Catalog, error) {
	c, err := catalog.New(demo_configs.FS)
	if err != nil {
		return nil, errs.Wrap(err, "build demo catalog failed")
	}
	if err := c.Discover(); err != nil {
		return nil, errs.Wrap(err, "register demo machines failed")
	}
	c.Freeze()
	return c, nil
}
