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

// Package sim 對 Simulated adapter 做大量模擬，用於驗證機台數學
// （RTP、命中率、派彩分布）。走的是送出→claim 的同一條回算路徑，
// 但不經過引擎的背景輪詢，以免模擬吞吐被輪詢間隔綁死。
package sim

import (
	"context"
	"io"
	"math"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/adapter"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/recorder"
	"github.com/zintix-labs/chainspin/sdk/core"
	"github.com/zintix-labs/chainspin/spec"
	"github.com/zintix-labs/chainspin/stats"
)

// 每台模擬機台的初始餘額。RTP < 1 的機台會慢慢虧，
// 這個額度夠跑百億局以上。
const workerFunds uint64 = math.MaxUint64 / 16

// Simulator 用於模擬遊戲行為，可建立多台機台並平行紀錄統計。
type Simulator struct {
	GameName string
	GameId   spec.GID
	ms       *spec.MachineSetting
	seeds    *core.Core // 派發各 worker 機台種子
	mBuf     []*adapter.Simulated
	rBuf     []*recorder.SpinRecorder
}

// New 建立模擬器。設定必須已通過 Init。
func New(ms *spec.MachineSetting, seed int64) (*Simulator, error) {
	if ms == nil || !ms.Initialized() {
		return nil, errs.NewFatal("machine setting must be initialized")
	}
	return &Simulator{
		GameName: ms.GameName,
		GameId:   ms.GameID,
		ms:       ms,
		seeds:    core.New(core.NewPCG64WithSeed(seed)),
	}, nil
}

// Sim 單線模擬：一台機台連續跑指定局數，回傳統計結果與用時。
func (s *Simulator) Sim(stakePerLine uint64, lineCount int, rounds int, showpb bool) (*stats.StatReport, time.Duration, error) {
	return s.SimMP(stakePerLine, lineCount, rounds, 1, showpb)
}

// SimMP 平行執行多台機台，總計 rounds×mp 局，合併統計後回傳結果與用時。
func (s *Simulator) SimMP(stakePerLine uint64, lineCount int, rounds int, mp int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	if err := s.ms.ValidateBet(stakePerLine, lineCount); err != nil {
		return nil, 0, err
	}
	if err := s.prepare(mp, stakePerLine, lineCount, mp); err != nil {
		return nil, 0, err
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(rounds * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			m := s.mBuf[i]
			r := s.rBuf[i]
			for n := 0; n < rounds; n++ {
				r.Record(spinOnce(m, stakePerLine, lineCount))
				bar.Increment()
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	merged, err := recorder.MergeSpinRecorder(s.rBuf)
	if err != nil {
		return nil, 0, err
	}
	result := merged.Done()
	result.Done()

	return result, used, nil
}

// SimSessions 模擬多個獨立 session（每個 session 一份 recorder），
// 產出機台整體報表與 session 體驗報表。
func (s *Simulator) SimSessions(mp int, sessions int, rounds int, stakePerLine uint64, lineCount int, showpb bool) (*stats.StatReport, *stats.EstimatorSessions, time.Duration, error) {
	defer s.reset()
	if sessions < 1 || rounds < 1 || mp < 1 {
		return nil, nil, 0, errs.NewWarn("invalid param")
	}
	if err := s.ms.ValidateBet(stakePerLine, lineCount); err != nil {
		return nil, nil, 0, err
	}
	if err := s.prepare(mp, stakePerLine, lineCount, sessions); err != nil {
		return nil, nil, 0, err
	}

	// 作一個緩衝channel 使session依序被機台消化
	jobs := make(chan *recorder.SpinRecorder, 2048)

	wg := new(sync.WaitGroup)
	wg.Add(mp)

	bar := pb.StartNew(sessions)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for w := 0; w < mp; w++ {
		go simWorker(wg, s.mBuf[w], jobs, stakePerLine, lineCount, rounds, bar)
	}

	for _, j := range s.rBuf {
		jobs <- j
	}
	close(jobs)
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	// 機台基準報表
	merged, err := recorder.MergeSpinRecorder(s.rBuf)
	if err != nil {
		return nil, nil, 0, err
	}
	st := merged.Done()
	st.Done()

	// session 體驗報表
	sBuf := make([]*stats.StatReport, len(s.rBuf))
	for i, r := range s.rBuf {
		sBuf[i] = r.Done()
		sBuf[i].Done()
	}
	est := stats.EstimatorSessionExp(sBuf)
	return st, est, used, nil
}

// ============================================================
// ** 以下內部方法 **
// ============================================================

// prepare 建好 mp 台機台與 nRec 份 recorder。
func (s *Simulator) prepare(mp int, stakePerLine uint64, lineCount int, nRec int) error {
	for len(s.mBuf) < mp {
		m := adapter.NewSimulated(s.ms, workerFunds, int64(s.seeds.Uint64()))
		if err := m.Initialize(context.Background()); err != nil {
			return err
		}
		s.mBuf = append(s.mBuf, m)
	}
	for len(s.rBuf) < nRec {
		r, err := recorder.NewSpinRecorder(s.GameName, s.GameId, stakePerLine, lineCount)
		if err != nil {
			return err
		}
		s.rBuf = append(s.rBuf, r)
	}
	return nil
}

// spinOnce 送出並立刻 claim 一局，壓成引擎風格的終態快照。
func spinOnce(m *adapter.Simulated, stakePerLine uint64, lineCount int) chainspin.SpinSnapshot {
	ctx := context.Background()
	snap := chainspin.SpinSnapshot{
		StakePerLine: stakePerLine,
		LineCount:    lineCount,
		TotalStake:   stakePerLine * uint64(lineCount),
	}

	commit, err := m.SubmitSpin(ctx, stakePerLine, lineCount)
	if err != nil {
		snap.Status = chainspin.StatusFailed
		snap.Error = err.Error()
		return snap
	}
	snap.Commitment = commit

	out, err := m.ClaimSpin(ctx, commit, stakePerLine, lineCount)
	if err != nil {
		snap.Status = chainspin.StatusFailed
		snap.Error = err.Error()
		return snap
	}
	snap.Status = chainspin.StatusCompleted
	snap.Outcome = out
	snap.Payout = out.TotalPayout
	snap.ClaimTxID = out.ClaimTxID
	return snap
}

func simWorker(wg *sync.WaitGroup, m *adapter.Simulated, jobs chan *recorder.SpinRecorder, stakePerLine uint64, lineCount int, rounds int, bar *pb.ProgressBar) {
	defer wg.Done()
	for j := range jobs {
		for range rounds {
			j.Record(spinOnce(m, stakePerLine, lineCount))
		}
		bar.Increment()
	}
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
}
