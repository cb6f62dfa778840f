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

// Package recorder 紀錄終態 spin：一路是統計彙總（餵 stats 報表），
// 一路是壓縮 journal（zstd JSONL，供審計/重播）。
package recorder

import (
	"fmt"

	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/spec"
	"github.com/zintix-labs/chainspin/stats"
)

// SpinRecorder 遊戲紀錄員
//
// 只統計同一種押注組合（stakePerLine × lineCount）的 spin，
// 並透過 Done 輸出統計報表。實作 chainspin.Sink，可直接掛在引擎上。
type SpinRecorder struct {
	GameName     string
	GameId       spec.GID
	StakePerLine uint64
	LineCount    int
	TotalStake   uint64
	Basic        *BasicRecord
	Dist         *DistRecord
}

// BasicRecord 基本遊戲資料紀錄
type BasicRecord struct {
	TotalBet     uint64
	TotalWin     uint64
	WinMultSum   float64 // 贏倍和（派彩/總押注）
	WinMultSqSum float64 // 贏倍平方和
	Rounds       int
	Verified     int
	Fallbacks    int
	Failed       int
	Expired      int
}

// DistRecord 派彩區間落點統計
type DistRecord struct {
	Bucket          *stats.WinBucket
	TotalWinCollect []int
}

func NewSpinRecorder(name string, id spec.GID, stakePerLine uint64, lineCount int) (*SpinRecorder, error) {
	s := new(SpinRecorder)

	if stakePerLine == 0 {
		return s, errs.NewFatal("stake per line must be positive")
	}
	if lineCount <= 0 {
		return s, errs.NewFatal(fmt.Sprintf("line count err %d", lineCount))
	}

	// 通過valid
	s.GameName = name
	s.GameId = id
	s.StakePerLine = stakePerLine
	s.LineCount = lineCount
	s.TotalStake = stakePerLine * uint64(lineCount)
	s.Basic = new(BasicRecord)
	s.Dist = newDistRecord(s.TotalStake)

	return s, nil
}

func MergeSpinRecorder(r []*SpinRecorder) (*SpinRecorder, error) {
	r0 := r[0]
	s, err := NewSpinRecorder(r0.GameName, r0.GameId, r0.StakePerLine, r0.LineCount)
	if err != nil {
		return s, err
	}
	for _, v := range r {
		if v.GameName != r0.GameName {
			return s, errs.NewFatal("merge spin record err : different game name")
		}
		if v.StakePerLine != r0.StakePerLine || v.LineCount != r0.LineCount {
			return s, errs.NewFatal("merge spin record err : different bet shape")
		}
		s.Basic.TotalBet += v.Basic.TotalBet
		s.Basic.TotalWin += v.Basic.TotalWin
		s.Basic.WinMultSum += v.Basic.WinMultSum
		s.Basic.WinMultSqSum += v.Basic.WinMultSqSum
		s.Basic.Rounds += v.Basic.Rounds
		s.Basic.Verified += v.Basic.Verified
		s.Basic.Fallbacks += v.Basic.Fallbacks
		s.Basic.Failed += v.Basic.Failed
		s.Basic.Expired += v.Basic.Expired

		// 整合Dist
		for i := range v.Dist.TotalWinCollect {
			s.Dist.TotalWinCollect[i] += v.Dist.TotalWinCollect[i]
		}
	}
	return s, nil
}

// RecordSpin 實作 chainspin.Sink：只接受終態快照。
func (s *SpinRecorder) RecordSpin(snap chainspin.SpinSnapshot) error {
	if !snap.Status.Terminal() {
		return errs.NewWarn("record spin err : snapshot is not terminal")
	}
	s.Record(snap)
	return nil
}

// Record 以單筆終態 spin 更新統計。
// 非 COMPLETED 的 spin 只進錯誤計數，不汙染 RTP（FAILED 的押注
// 可能根本沒離開錢包，EXPIRED 的派彩不明）。
func (s *SpinRecorder) Record(snap chainspin.SpinSnapshot) {
	switch snap.Status {
	case chainspin.StatusFailed:
		s.Basic.Failed++
		return
	case chainspin.StatusExpired:
		s.Basic.Expired++
		return
	case chainspin.StatusCompleted:
		// fall through
	default:
		return
	}

	w := snap.Payout
	s.Basic.TotalBet += snap.TotalStake
	s.Basic.TotalWin += w

	mult := float64(w) / float64(s.TotalStake)
	s.Basic.WinMultSum += mult
	s.Basic.WinMultSqSum += mult * mult

	if snap.Outcome != nil && snap.Outcome.Verified {
		s.Basic.Verified++
	} else {
		s.Basic.Fallbacks++
	}
	s.Basic.Rounds++

	s.Dist.TotalWinCollect[s.Dist.Bucket.Index(w)]++
}

func (s *SpinRecorder) Done() *stats.StatReport {
	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:     s.GameName,
			GameId:       s.GameId,
			StakePerLine: s.StakePerLine,
			LineCount:    s.LineCount,
			TotalStake:   s.TotalStake,
			TotalBet:     s.Basic.TotalBet,
			TotalWin:     s.Basic.TotalWin,
			RTP:          s.rtp(),
			NoWinRounds:  s.Dist.TotalWinCollect[0],
			HitRate:      s.hitRate(),
			Rounds:       s.Basic.Rounds,
			Verified:     s.Basic.Verified,
			Fallbacks:    s.Basic.Fallbacks,
			Failed:       s.Basic.Failed,
			Expired:      s.Basic.Expired,
		},
		Mult: &stats.MultReport{
			TotalWinMult:      s.Basic.WinMultSum,
			TotalWinMultSqSum: s.Basic.WinMultSqSum,
		},
		Dist: &stats.DistReport{
			WinBucket:       stats.Buckets.WinBucketStr(),
			TotalWinCollect: s.Dist.TotalWinCollect,
			TotalWinDist:    nil,
		},
	}

	length := len(report.Dist.WinBucket)
	totalWinF := make([]float64, length)
	if rf := float64(report.Summary.Rounds); rf > 0 {
		for i := range length {
			totalWinF[i] = float64(report.Dist.TotalWinCollect[i]) / rf
		}
	}
	report.Dist.TotalWinDist = totalWinF

	return report
}

func (s *SpinRecorder) rtp() float64 {
	if s.Basic.Rounds == 0 || s.Basic.TotalBet == 0 {
		return 0
	}
	return float64(s.Basic.TotalWin) / float64(s.Basic.TotalBet)
}

func (s *SpinRecorder) hitRate() float64 {
	if s.Basic.Rounds == 0 {
		return 0
	}
	return 1.0 - float64(s.Dist.TotalWinCollect[0])/float64(s.Basic.Rounds)
}

func newDistRecord(totalStake uint64) *DistRecord {
	d := new(DistRecord)
	d.Bucket = stats.Buckets.GetBucketByStake(totalStake)
	d.TotalWinCollect = make([]int, len(stats.Buckets.WinBucketStr()))
	return d
}
