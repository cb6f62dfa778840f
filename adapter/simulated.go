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
	"context"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/ledger"
	"github.com/zintix-labs/chainspin/sdk/core"
	"github.com/zintix-labs/chainspin/sdk/grid"
	"github.com/zintix-labs/chainspin/sdk/sampler"
	"github.com/zintix-labs/chainspin/sdk/wincalc"
	"github.com/zintix-labs/chainspin/spec"
)

const simSeedDomain = "simulated/blockseed"

// SimFee 是模擬 adapter 的固定單筆費用。
const SimFee uint64 = 1000

// simBet 是模擬 adapter 內一筆進行中的押注。
type simBet struct {
	stakePerUnit uint64
	lineCount    int
	claimRound   ledger.Round
	forcedStops  []int // 非 nil 時直接用這些停點建盤面
	claimed      bool
}

// Simulated 是無網路的 adapter：記憶體餘額、決定性種子。
//
// 測試掛鉤：
//   - ForceStops 讓下一筆 spin 使用指定停點（強制盤面）。
//   - SetReelWeights 啟用機率加權停點（抽樣取代種子推導）。
//   - FailClaims 讓 claim 失敗，驗證本地回退路徑。
//
// 回合推進與 memledger 同款兩種模式：預設只靠交易確認與
// AdvanceRound() 推進（完全決定性，模擬與測試用）；
// StartClock 後改依時鐘自然出塊（引擎輪詢用）。
// CurrentRound 純查詢，不改變任何狀態。
type Simulated struct {
	mu      sync.Mutex
	setting *spec.MachineSetting
	gen     *grid.Generator
	ev      *wincalc.Evaluator

	balance  uint64
	round    ledger.Round
	roundDur time.Duration
	startAt  time.Time
	baseSeed int64
	rng      *core.Core

	bets        map[string]*simBet
	forcedQueue [][]int
	reelLUTs    []sampler.LUT
	claimErr    error

	initOnce sync.Once
	initErr  error
}

var _ MachineAdapter = (*Simulated)(nil)

// NewSimulated 建立模擬 adapter；設定直接注入，不經網路。
func NewSimulated(ms *spec.MachineSetting, balance uint64, baseSeed int64) *Simulated {
	return &Simulated{
		setting:  ms,
		balance:  balance,
		round:    1,
		baseSeed: baseSeed,
		rng:      core.New(core.NewPCG64WithSeed(baseSeed)),
		bets:     make(map[string]*simBet),
	}
}

// Initialize 實作 MachineAdapter；冪等。
func (s *Simulated) Initialize(_ context.Context) error {
	s.initOnce.Do(func() {
		if err := s.setting.Init(); err != nil {
			s.initErr = errs.WrapKind(err, errs.KindNotInitialized, "machine setting unusable")
			return
		}
		g, err := grid.NewGenerator(s.setting)
		if err != nil {
			s.initErr = errs.WrapKind(err, errs.KindNotInitialized, "build grid generator")
			return
		}
		s.gen = g
		s.ev = wincalc.NewEvaluator(s.setting)
	})
	return s.initErr
}

// Config 實作 MachineAdapter。
func (s *Simulated) Config() *spec.MachineSetting {
	if s.initErr != nil || s.gen == nil {
		return nil
	}
	return s.setting
}

// ForceStops 排入一組強制停點，供下一筆 spin 使用。
func (s *Simulated) ForceStops(stops []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]int, len(stops))
	copy(cp, stops)
	s.forcedQueue = append(s.forcedQueue, cp)
}

// SetReelWeights 啟用機率加權停點：每軸一組停點權重。
// 設定後所有未強制的 spin 都改用加權抽樣。
func (s *Simulated) SetReelWeights(weights [][]uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(weights) != s.setting.Reel.Columns {
		return errs.Warnf("weights for %d reels, machine has %d", len(weights), s.setting.Reel.Columns)
	}
	luts := make([]sampler.LUT, len(weights))
	for i, w := range weights {
		if len(w) != s.setting.Reel.ReelLength {
			return errs.Warnf("reel %d has %d stops, weights cover %d", i, s.setting.Reel.ReelLength, len(w))
		}
		luts[i] = sampler.BuildLUT(w)
	}
	s.reelLUTs = luts
	return nil
}

// FailClaims 讓後續 claim 以指定錯誤失敗；nil 恢復正常。
func (s *Simulated) FailClaims(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claimErr = err
}

// StartClock 啟用時鐘出塊：之後回合以 d 為間隔自然推進。
// 引擎這類靠輪詢等待 claim 回合的使用者需要它；
// 注意時鐘模式下回合號與時間相關，不再可決定性重現。
func (s *Simulated) StartClock(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roundDur = d
	s.startAt = time.Now()
}

// AdvanceRound 手動推進一個回合（測試用）。
func (s *Simulated) AdvanceRound() ledger.Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceTo(s.currentLocked() + 1)
	return s.round
}

// SubmitSpin 實作 MachineAdapter：扣款並登記押注，無網路往返。
func (s *Simulated) SubmitSpin(_ context.Context, stakePerLine uint64, lineCount int) (BetCommitment, error) {
	if err := s.readyErr(); err != nil {
		return BetCommitment{}, err
	}
	if err := s.setting.ValidateBet(stakePerLine, lineCount); err != nil {
		return BetCommitment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payment := stakePerLine * uint64(lineCount)
	needed := payment + 2*SimFee
	if s.balance < needed {
		return BetCommitment{}, errs.Kindf(errs.KindInsufficientBalance, "balance %d < required %d", s.balance, needed)
	}
	s.balance -= needed

	// 交易確認產生一個新區塊
	submitRound := s.currentLocked() + 1
	s.advanceTo(submitRound)

	key := make([]byte, 32)
	binary.BigEndian.PutUint64(key[0:8], s.rng.Uint64())
	binary.BigEndian.PutUint64(key[8:16], s.rng.Uint64())
	binary.BigEndian.PutUint64(key[16:24], s.rng.Uint64())
	binary.BigEndian.PutUint64(key[24:32], s.rng.Uint64())

	bet := &simBet{
		stakePerUnit: stakePerLine,
		lineCount:    lineCount,
		claimRound:   submitRound + 1,
	}
	if len(s.forcedQueue) > 0 {
		bet.forcedStops = s.forcedQueue[0]
		s.forcedQueue = s.forcedQueue[1:]
	} else if s.reelLUTs != nil {
		stops := make([]int, len(s.reelLUTs))
		for i, lut := range s.reelLUTs {
			stops[i] = lut.Pick(s.rng)
		}
		bet.forcedStops = stops
	}
	s.bets[string(key)] = bet

	return BetCommitment{
		Key:         key,
		TxID:        fmt.Sprintf("%016X%016X", s.rng.Uint64(), s.rng.Uint64()),
		SubmitRound: submitRound,
		ClaimRound:  submitRound + 1,
	}, nil
}

// CalculateOutcomeFromSeed 實作 MachineAdapter（Verified=false）。
func (s *Simulated) CalculateOutcomeFromSeed(_ context.Context, commit BetCommitment, stakePerLine uint64, lineCount int) (*SpinOutcome, error) {
	if err := s.readyErr(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	bet, ok := s.bets[string(commit.Key)]
	if !ok {
		return nil, errs.NewKind(errs.KindContractError, "unknown bet key")
	}
	if s.currentLocked() < bet.claimRound {
		return nil, errs.Kindf(errs.KindNetwork, "round %d not yet available", bet.claimRound)
	}
	return s.outcomeLocked(commit, bet, stakePerLine, lineCount), nil
}

// ClaimSpin 實作 MachineAdapter；claim 失敗時回退本地回算。
func (s *Simulated) ClaimSpin(_ context.Context, commit BetCommitment, stakePerLine uint64, lineCount int) (*SpinOutcome, error) {
	if err := s.readyErr(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	bet, ok := s.bets[string(commit.Key)]
	if !ok {
		return nil, errs.NewKind(errs.KindContractError, "unknown bet key")
	}
	if s.currentLocked() < bet.claimRound {
		// claim 交易確認把鏈帶到 claim 回合
		s.advanceTo(bet.claimRound)
	}

	outcome := s.outcomeLocked(commit, bet, stakePerLine, lineCount)
	if s.claimErr != nil || bet.claimed {
		// claim 失敗：同一條回算路徑的結果照樣回傳，只是未驗證
		return outcome, nil
	}

	bet.claimed = true
	s.balance += outcome.TotalPayout
	outcome.ClaimTxID = fmt.Sprintf("%016X%016X", s.rng.Uint64(), s.rng.Uint64())
	outcome.Verified = true
	return outcome, nil
}

// Balance 實作 MachineAdapter。
func (s *Simulated) Balance(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, nil
}

// CurrentRound 實作 MachineAdapter；唯讀無副作用。
func (s *Simulated) CurrentRound(_ context.Context) (ledger.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(), nil
}

// ============================================================
// ** 以下內部方法 **
// ============================================================

func (s *Simulated) readyErr() error {
	if s.gen == nil {
		return errs.NewKind(errs.KindNotInitialized, "adapter not initialized")
	}
	return nil
}

// currentLocked 計算當前回合：手動模式回傳基準回合，
// 時鐘模式加上經過的出塊數。呼叫端須持有 s.mu。
func (s *Simulated) currentLocked() ledger.Round {
	if s.roundDur <= 0 {
		return s.round
	}
	elapsed := ledger.Round(time.Since(s.startAt) / s.roundDur)
	return s.round + elapsed
}

// advanceTo 把基準回合推進到 target（不倒退）；
// 時鐘模式下同步時間基準，避免回合號回跳。
func (s *Simulated) advanceTo(target ledger.Round) {
	if s.round < target {
		s.round = target
	}
	if s.roundDur > 0 {
		s.startAt = time.Now()
	}
}

// outcomeLocked 是 provisional 與 claim 共用的回算路徑。
func (s *Simulated) outcomeLocked(commit BetCommitment, bet *simBet, stakePerLine uint64, lineCount int) *SpinOutcome {
	seed := s.seedAt(bet.claimRound)

	var screen []int16
	if bet.forcedStops != nil {
		screen = s.screenFromStops(bet.forcedStops)
	} else {
		screen = s.gen.Generate(commit.Key, seed)
	}
	res := s.ev.Evaluate(stakePerLine, lineCount, screen)

	return &SpinOutcome{
		Grid:        screen,
		Wins:        res.Wins,
		TotalPayout: res.Total,
		Round:       bet.claimRound,
		Seed:        seed,
		Commitment:  commit.Key,
		Verified:    false,
	}
}

// screenFromStops 直接由停點建盤面（強制/加權模式）。
func (s *Simulated) screenFromStops(stops []int) []int16 {
	cols := s.setting.Reel.Columns
	rows := s.setting.Reel.Rows
	length := s.setting.Reel.ReelLength
	screen := make([]int16, cols*rows)
	for col := 0; col < cols && col < len(stops); col++ {
		strip := s.setting.Reel.Strips[col]
		for row := 0; row < rows; row++ {
			ch := strip[(stops[col]+row)%length]
			screen[row*cols+col] = s.setting.Paytable.SymbolIndex[ch]
		}
	}
	return screen
}

func (s *Simulated) seedAt(round ledger.Round) []byte {
	buf := make([]byte, 0, len(simSeedDomain)+16)
	buf = append(buf, simSeedDomain...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(s.baseSeed))
	buf = binary.BigEndian.AppendUint64(buf, uint64(round))
	digest := sha512.Sum512_256(buf)
	return digest[:]
}

