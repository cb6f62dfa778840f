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

package catalog

import (
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/chainspin/spec"
)

func testConfigYAML(name string, gid int) []byte {
	return fmt.Appendf(nil, `
game_name: %s
game_id: %d
machine_type: fixed_line
app_id: 7
min_stake_per_unit: 1000
max_stake_per_unit: 10000000
reel:
  strips:
    - "ABCDEABCDEABCDE"
    - "ABCDEABCDEABCDE"
    - "ABCDEABCDEABCDE"
    - "ABCDEABCDEABCDE"
    - "ABCDEABCDEABCDE"
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
`, name, gid)
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"alpha.yaml": &fstest.MapFile{Data: testConfigYAML("alpha", 1)},
		"beta.yaml":  &fstest.MapFile{Data: testConfigYAML("beta", 2)},
	}
}

func TestCatalogRegisterAndLoad(t *testing.T) {
	c, err := New(testFS())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	err = c.Register(
		Entry{GID: spec.GID(1), Name: "Alpha", ConfigName: "alpha.yaml"},
		Entry{GID: spec.GID(2), Name: "beta", ConfigName: "beta.yaml"},
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	c.Freeze()

	if err := c.Register(Entry{GID: 3, Name: "x", ConfigName: "alpha.yaml"}); err == nil {
		t.Fatal("register after freeze should fail")
	}

	// 名稱大小寫不敏感
	if _, ok := c.GetByName("ALPHA"); !ok {
		t.Fatal("lookup by name should be case-insensitive")
	}

	ms, err := c.MachineSettingById(1)
	if err != nil {
		t.Fatalf("load setting: %v", err)
	}
	if !ms.Initialized() || ms.GameName != "alpha" || ms.MaxLines != 2 {
		t.Fatalf("setting not initialized as expected: %+v", ms)
	}

	if ids := c.IDs(); len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("ids %v", ids)
	}
}

func TestCatalogDiscover(t *testing.T) {
	c, err := New(testFS())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	if err := c.Discover(); err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(c.All()) != 2 {
		t.Fatalf("discovered %d entries, want 2", len(c.All()))
	}
	if _, ok := c.GetByName("beta"); !ok {
		t.Fatal("beta should be discovered")
	}

	sums, err := c.Summaries()
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(sums) != 2 || sums[0].MachineType != "fixed_line" || sums[0].Columns != 5 {
		t.Fatalf("summaries %+v", sums)
	}
}

func TestCatalogDuplicateDetection(t *testing.T) {
	c, _ := New(testFS())
	if err := c.Register(
		Entry{GID: 1, Name: "a", ConfigName: "alpha.yaml"},
		Entry{GID: 1, Name: "b", ConfigName: "beta.yaml"},
	); err == nil {
		t.Fatal("duplicate gid should fail")
	}

	c2, _ := New(testFS())
	if err := c2.Register(Entry{GID: 1, Name: "a", ConfigName: "missing.yaml"}); err == nil {
		t.Fatal("missing config should fail")
	}
	if err := c2.Register(Entry{GID: 1, Name: "a", ConfigName: "../evil.yaml"}); err == nil {
		t.Fatal("path-like config name should fail")
	}
}

func TestCatalogRejectsNestedFS(t *testing.T) {
	nested := fstest.MapFS{
		"sub/alpha.yaml": &fstest.MapFile{Data: testConfigYAML("alpha", 1)},
	}
	if _, err := New(nested); err == nil {
		t.Fatal("nested config FS should be rejected")
	}
}

func TestCatalogDuplicateAcrossSources(t *testing.T) {
	a := fstest.MapFS{"alpha.yaml": &fstest.MapFile{Data: testConfigYAML("alpha", 1)}}
	b := fstest.MapFS{"alpha.yaml": &fstest.MapFile{Data: testConfigYAML("alpha2", 2)}}
	if _, err := New(a, b); err == nil {
		t.Fatal("duplicate config across sources should be rejected")
	}
}
