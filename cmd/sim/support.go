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
	"crypto/rand"
	"flag"
	"io/fs"
	"log"
	"math"
	"math/big"
	"os"
	"time"

	"github.com/zintix-labs/chainspin/catalog"
	"github.com/zintix-labs/chainspin/demo/demo_configs"
	"github.com/zintix-labs/chainspin/sim"
	"github.com/zintix-labs/chainspin/stats"
)

var cfg *config = new(config)

type config struct {
	game          string
	configDir     string
	stake         uint64
	lines         int
	rounds        int
	mp            int
	sessions      int
	sessionRounds int
	seed          int64
	render        string
	pprofmode     string
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.StringVar(&cfg.game, "game", "neon_lines", "target game name")
	flag.StringVar(&cfg.configDir, "config", "", "extra machine config dir (flat, yaml/json)")
	flag.Uint64Var(&cfg.stake, "stake", 1000, "stake per line (smallest unit)")
	flag.IntVar(&cfg.lines, "lines", 10, "line count")
	flag.IntVar(&cfg.rounds, "rounds", 1000000, "rounds per worker")
	flag.IntVar(&cfg.mp, "mp", 1, "number of parallel machines")
	flag.IntVar(&cfg.sessions, "sessions", 0, "session count (0 = plain sim)")
	flag.IntVar(&cfg.sessionRounds, "session-rounds", 200, "rounds per session")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.render, "render", "stdout", "output: stdout|json|yaml")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	// given seed illeagel -> default seed
	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed.Int64()
	}
}

// 這裡解析並分支要執行的模擬器
func executeSimulator() {
	srcs := []fs.FS{demo_configs.FS}
	if cfg.configDir != "" {
		srcs = append(srcs, os.DirFS(cfg.configDir))
	}
	cat, err := catalog.New(srcs...)
	if err != nil {
		log.Fatal(err)
	}
	if err := cat.Discover(); err != nil {
		log.Fatal(err)
	}
	cat.Freeze()

	ms, err := cat.MachineSettingByName(cfg.game)
	if err != nil {
		log.Fatal(err)
	}
	s, err := sim.New(ms, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}

	showpb := cfg.render == "stdout"

	if cfg.sessions > 0 {
		st, est, used, err := s.SimSessions(cfg.mp, cfg.sessions, cfg.sessionRounds, cfg.stake, cfg.lines, showpb)
		if err != nil {
			log.Fatal(err)
		}
		renderReport(st, used, est)
		return
	}

	st, used, err := s.SimMP(cfg.stake, cfg.lines, cfg.rounds, cfg.mp, showpb)
	if err != nil {
		log.Fatal(err)
	}
	renderReport(st, used, nil)
}

func renderReport(st *stats.StatReport, used time.Duration, est *stats.EstimatorSessions) {
	switch cfg.render {
	case "json":
		if err := st.WriteWith(os.Stdout, &stats.JsonStatReportRender{}); err != nil {
			log.Fatal(err)
		}
		if est != nil {
			r := &stats.JsonEstimatorRender{}
			if err := r.Write(os.Stdout, est); err != nil {
				log.Fatal(err)
			}
		}
	case "yaml":
		if err := st.WriteWith(os.Stdout, &stats.YAMLStatReportRender{}); err != nil {
			log.Fatal(err)
		}
		if est != nil {
			r := &stats.YAMLEstimatorRender{}
			if err := r.Write(os.Stdout, est); err != nil {
				log.Fatal(err)
			}
		}
	default:
		st.StdOut(used)
		if est != nil {
			est.Out()
		}
	}
}
