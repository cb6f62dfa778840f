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

// Package chainspin 提供 Spin Engine：把一筆押注帶過完整生命週期的編排器。
//
// 流程（對應 QueuedSpin 的狀態機）：
//  1. 送出：向 adapter 取得押注承諾（bet key + 回合號）。呼叫端只被阻塞到
//     拿到承諾為止，之後全部在背景進行。
//  2. 等待：輪詢鏈上高度，直到 claim 回合的種子存在。
//  3. 回算：用種子本地算出臨時結果（unverified）——玩家最先看到的就是它。
//  4. claim：背景嘗試鏈上權威 claim。成功則權威派彩覆蓋臨時值並標記
//     verified；失敗則臨時結果原樣保留，只是維持 unverified。
//
// 失敗語意：送出錯誤對該筆 spin 是終點（已扣的押注不能重複送出）；
// claim 錯誤設計上可恢復——本地回算保證每筆 spin 都有可顯示的結果。
// 重試計數只存在於唯讀的輪詢操作。
package chainspin

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zintix-labs/chainspin/adapter"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/ledger"
)

// Config 是引擎的輪詢/過期策略。零值欄位套用預設。
type Config struct {
	// PollInterval 是鏈上高度輪詢的基本間隔。
	PollInterval time.Duration
	// MaxPollInterval 是輪詢出錯時退避的間隔上限。
	MaxPollInterval time.Duration
	// PollBudget 是單筆 spin 的輪詢次數上限；用盡進入 EXPIRED。
	PollBudget int
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 200 * time.Millisecond
	}
	if c.MaxPollInterval <= 0 {
		c.MaxPollInterval = 2 * time.Second
	}
	if c.PollBudget <= 0 {
		c.PollBudget = 120
	}
	return c
}

// Sink 接收終態 spin 的快照（例如 recorder 的 journal）。
// 錯誤只會被記 log，不影響 spin 本身。
type Sink interface {
	RecordSpin(s SpinSnapshot) error
}

// EngineMetrics 是拉取式（pull）觀測快照。
//
// 不綁任何 metrics SDK，由上層自己決定如何輸出。
type EngineMetrics struct {
	Inflight       int   `json:"inflight"`        // 活躍中（未達終態）
	Submitted      int64 `json:"submitted"`       // 成功送出的總數
	Completed      int64 `json:"completed"`       // 終態 COMPLETED
	Failed         int64 `json:"failed"`          // 終態 FAILED
	Expired        int64 `json:"expired"`         // 終態 EXPIRED
	Verified       int64 `json:"verified"`        // 完成且派彩經鏈上驗證
	ClaimFallbacks int64 `json:"claim_fallbacks"` // 完成但回退本地回算（unverified）
	Closed         bool  `json:"closed"`
}

// Engine 編排所有進行中的 spin。
//
// 每筆 QueuedSpin 是獨立的工作單位，彼此不共享可變狀態；
// 唯一共享的是 adapter 快取的機台設定（初始化後唯讀）。
// 已送出的 spin 不支援取消——押注已是不可逆的金融承諾。
type Engine struct {
	ad   adapter.MachineAdapter
	log  *slog.Logger
	cfg  Config
	sink Sink

	mu       sync.Mutex
	active   map[uint64]*QueuedSpin
	finished map[uint64]*QueuedSpin

	nextID atomic.Uint64

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	closed    atomic.Bool
	wg        sync.WaitGroup

	submitted      atomic.Int64
	completed      atomic.Int64
	failed         atomic.Int64
	expired        atomic.Int64
	verified       atomic.Int64
	claimFallbacks atomic.Int64
}

// NewEngine 建立引擎。adapter 必填；log 可為 nil（丟棄）；sink 可為 nil。
// adapter 的 Initialize 由組裝點負責，引擎不代為初始化。
func NewEngine(ad adapter.MachineAdapter, log *slog.Logger, sink Sink, cfg Config) (*Engine, error) {
	if ad == nil {
		return nil, errs.NewFatal("machine adapter required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		ad:       ad,
		log:      log,
		cfg:      cfg.withDefaults(),
		sink:     sink,
		active:   make(map[uint64]*QueuedSpin),
		finished: make(map[uint64]*QueuedSpin),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// SubmitSpin 送出一筆押注並回傳送出後的快照。
//
// 只阻塞到取得承諾為止；等待/回算/claim 全部在背景進行。
// 送出失敗時 spin 進入 FAILED 並把錯誤回傳給呼叫端——
// 同一筆 spin 不會自動重送。
func (e *Engine) SubmitSpin(ctx context.Context, stakePerLine uint64, lineCount int) (SpinSnapshot, error) {
	if e.closed.Load() {
		return SpinSnapshot{}, errs.NewFatal("spin engine closed")
	}

	q := newQueuedSpin(e.nextID.Add(1), stakePerLine, lineCount)
	e.mu.Lock()
	e.active[q.id] = q
	e.mu.Unlock()

	q.setStatus(StatusSubmitting)
	commit, err := e.ad.SubmitSpin(ctx, stakePerLine, lineCount)
	if err != nil {
		q.fail(err)
		e.finish(q)
		return q.Snapshot(), err
	}
	e.submitted.Add(1)
	q.setCommit(commit)
	q.setStatus(StatusWaiting)

	e.log.Info("spin submitted",
		"spin_id", q.id,
		"tx_id", commit.TxID,
		"submit_round", uint64(commit.SubmitRound),
		"claim_round", uint64(commit.ClaimRound),
	)

	e.wg.Add(1)
	go e.runSpin(q)

	return q.Snapshot(), nil
}

// Outcome 回傳指定 spin 的當下快照（含已達終態者）。
func (e *Engine) Outcome(spinID uint64) (SpinSnapshot, error) {
	q := e.lookup(spinID)
	if q == nil {
		return SpinSnapshot{}, errs.Warnf("spin %d not found", spinID)
	}
	return q.Snapshot(), nil
}

// Wait 阻塞到 spin 達終態（或 ctx 取消），回傳終態快照。
func (e *Engine) Wait(ctx context.Context, spinID uint64) (SpinSnapshot, error) {
	q := e.lookup(spinID)
	if q == nil {
		return SpinSnapshot{}, errs.Warnf("spin %d not found", spinID)
	}
	select {
	case <-q.Done():
		return q.Snapshot(), nil
	case <-ctx.Done():
		return q.Snapshot(), errs.NewWarn("wait canceled/timeout: " + ctx.Err().Error())
	}
}

// QueueState 回傳所有活躍 spin 的快照（依 ID 排序）與觀測數據。
type QueueState struct {
	Active  []SpinSnapshot `json:"active"`
	Metrics EngineMetrics  `json:"metrics"`
}

func (e *Engine) QueueState() QueueState {
	e.mu.Lock()
	snaps := make([]SpinSnapshot, 0, len(e.active))
	for _, q := range e.active {
		snaps = append(snaps, q.Snapshot())
	}
	e.mu.Unlock()

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID < snaps[j].ID })
	return QueueState{Active: snaps, Metrics: e.Metrics()}
}

// Metrics 回傳觀測快照；上層可用於 log 或 /metrics。
func (e *Engine) Metrics() EngineMetrics {
	e.mu.Lock()
	inflight := len(e.active)
	e.mu.Unlock()
	return EngineMetrics{
		Inflight:       inflight,
		Submitted:      e.submitted.Load(),
		Completed:      e.completed.Load(),
		Failed:         e.failed.Load(),
		Expired:        e.expired.Load(),
		Verified:       e.verified.Load(),
		ClaimFallbacks: e.claimFallbacks.Load(),
		Closed:         e.closed.Load(),
	}
}

// Adapter 回傳引擎持有的 adapter（餘額/設定查詢用）。
func (e *Engine) Adapter() adapter.MachineAdapter {
	return e.ad
}

// Close 停止接受新 spin 並等背景工作收尾。可重複呼叫。
// 尚未達終態的 spin 會以 FAILED 收場（引擎關閉不是它們的錯，
// 但結果已無法再推進）。
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		e.cancel()
		e.wg.Wait()
	})
}

// ============================================================
// ** 以下內部方法 **
// ============================================================

// runSpin 是每筆 spin 的背景生命週期：等待 → 回算 → claim → 終態。
func (e *Engine) runSpin(q *QueuedSpin) {
	defer e.wg.Done()
	defer e.finish(q)

	snap := q.Snapshot()
	commit := snap.Commitment

	// 1. 等待 claim 回合的種子存在
	if !e.waitForRound(q, commit.ClaimRound) {
		return
	}

	// 2. 臨時結果：玩家最先看到的東西，claim 之前就要有
	q.setStatus(StatusProcessing)
	out, err := e.ad.CalculateOutcomeFromSeed(e.ctx, commit, snap.StakePerLine, snap.LineCount)
	if err != nil {
		// 臨時回算失敗不致命：claim 路徑可能還能給出結果
		e.log.Warn("provisional outcome unavailable", "spin_id", q.id, "err", err)
	} else {
		q.setOutcome(out)
	}
	q.setStatus(StatusReadyToClaim)

	// 3. 鏈上權威 claim
	q.setStatus(StatusClaiming)
	final, cerr := e.ad.ClaimSpin(e.ctx, commit, snap.StakePerLine, snap.LineCount)
	if cerr != nil {
		// claim 連同回退都失敗：臨時結果存在就照樣完成，否則 FAILED
		if q.Snapshot().Outcome == nil {
			e.log.Error("spin failed without outcome", "spin_id", q.id, "err", cerr)
			q.fail(cerr)
			return
		}
		e.log.Warn("claim failed, provisional outcome stands", "spin_id", q.id, "err", cerr)
		q.setStatus(StatusCompleted)
		return
	}

	q.setOutcome(final)
	q.setStatus(StatusCompleted)
}

// waitForRound 輪詢鏈上高度直到 target 存在。
// 只有唯讀查詢會重試；出錯時間隔翻倍退避（封頂 MaxPollInterval）。
// 預算用盡回 false（EXPIRED）；引擎關閉也回 false。
func (e *Engine) waitForRound(q *QueuedSpin, target ledger.Round) bool {
	interval := e.cfg.PollInterval
	for {
		cur, err := e.ad.CurrentRound(e.ctx)
		if err == nil && cur >= target {
			return true
		}
		if err != nil {
			if !errs.IsKind(err, errs.KindNetwork) && !errs.IsKind(err, errs.KindTimeout) {
				e.log.Warn("round query failed", "spin_id", q.id, "err", err)
			}
			interval = min(interval*2, e.cfg.MaxPollInterval)
		} else {
			interval = e.cfg.PollInterval
		}

		if q.noteRetry() >= e.cfg.PollBudget {
			q.expire(fmt.Sprintf("round %d not reached within %d polls", uint64(target), e.cfg.PollBudget))
			return false
		}

		select {
		case <-e.ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
}

// finish 把終態 spin 從活躍佇列移到完成區，更新計數並通知 sink。
func (e *Engine) finish(q *QueuedSpin) {
	snap := q.Snapshot()
	if !snap.Status.Terminal() {
		// 背景流程被 Close 打斷
		q.fail(errs.NewFatal("spin engine closed"))
		snap = q.Snapshot()
	}

	e.mu.Lock()
	if _, ok := e.active[q.id]; !ok {
		e.mu.Unlock()
		return
	}
	delete(e.active, q.id)
	e.finished[q.id] = q
	e.mu.Unlock()

	switch snap.Status {
	case StatusCompleted:
		e.completed.Add(1)
		if snap.Outcome != nil && snap.Outcome.Verified {
			e.verified.Add(1)
		} else {
			e.claimFallbacks.Add(1)
		}
	case StatusFailed:
		e.failed.Add(1)
	case StatusExpired:
		e.expired.Add(1)
	}

	if e.sink != nil {
		if err := e.sink.RecordSpin(snap); err != nil {
			e.log.Warn("sink record failed", "spin_id", snap.ID, "err", err)
		}
	}
	e.log.Info("spin finished",
		"spin_id", snap.ID,
		"status", string(snap.Status),
		"payout", snap.Payout,
		"verified", snap.Outcome != nil && snap.Outcome.Verified,
	)
}

func (e *Engine) lookup(spinID uint64) *QueuedSpin {
	e.mu.Lock()
	defer e.mu.Unlock()
	if q, ok := e.active[spinID]; ok {
		return q
	}
	return e.finished[spinID]
}
