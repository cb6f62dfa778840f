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

package chainspin

import (
	"sync"
	"time"

	"github.com/zintix-labs/chainspin/adapter"
)

// SpinStatus 是 QueuedSpin 的生命週期狀態。
//
// 快樂路徑：
//
//	PENDING → SUBMITTING → WAITING → PROCESSING → READY_TO_CLAIM → CLAIMING → COMPLETED
//
// 分支：
//   - FAILED：SUBMITTING / CLAIMING 發生不可恢復錯誤，且尚未產生任何結果。
//   - EXPIRED：WAITING / READY_TO_CLAIM 階段輪詢預算用盡。
type SpinStatus string

const (
	StatusPending      SpinStatus = "PENDING"
	StatusSubmitting   SpinStatus = "SUBMITTING"
	StatusWaiting      SpinStatus = "WAITING"
	StatusProcessing   SpinStatus = "PROCESSING"
	StatusReadyToClaim SpinStatus = "READY_TO_CLAIM"
	StatusClaiming     SpinStatus = "CLAIMING"
	StatusCompleted    SpinStatus = "COMPLETED"
	StatusFailed       SpinStatus = "FAILED"
	StatusExpired      SpinStatus = "EXPIRED"
)

// Terminal 回報該狀態是否為終態（spin 不會再被引擎改動）。
func (s SpinStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusExpired:
		return true
	}
	return false
}

// QueuedSpin 是引擎的工作單位。
//
// 由呼叫端建立（PENDING），之後只有引擎可以改動它；
// 終態後從活躍佇列移除，只留快照供查詢。
// retries / lastRetryAt 只服務唯讀的輪詢操作，金融性送出絕不重試。
type QueuedSpin struct {
	mu sync.Mutex

	id           uint64
	status       SpinStatus
	stakePerLine uint64
	lineCount    int
	totalStake   uint64
	createdAt    time.Time

	commit    adapter.BetCommitment
	claimTxID string

	outcome *adapter.SpinOutcome
	payout  uint64

	errText     string
	retries     int
	lastRetryAt time.Time

	// done 在進入終態時關閉。
	done chan struct{}
}

func newQueuedSpin(id uint64, stakePerLine uint64, lineCount int) *QueuedSpin {
	return &QueuedSpin{
		id:           id,
		status:       StatusPending,
		stakePerLine: stakePerLine,
		lineCount:    lineCount,
		totalStake:   stakePerLine * uint64(lineCount),
		createdAt:    time.Now(),
		done:         make(chan struct{}),
	}
}

// Done 回傳終態訊號通道；進入 COMPLETED/FAILED/EXPIRED 時關閉。
func (q *QueuedSpin) Done() <-chan struct{} {
	return q.done
}

// setStatus 推進狀態；進入終態時關閉 done。終態之後不再改動。
func (q *QueuedSpin) setStatus(s SpinStatus) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.status.Terminal() {
		return
	}
	q.status = s
	if s.Terminal() {
		close(q.done)
	}
}

// setCommit 記錄送出成功的承諾。
func (q *QueuedSpin) setCommit(c adapter.BetCommitment) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.commit = c
}

// setOutcome 單調更新結果：資訊只能增加（unset → unverified → verified），
// 已驗證的結果絕不被未驗證的覆蓋。
func (q *QueuedSpin) setOutcome(o *adapter.SpinOutcome) {
	if o == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.outcome != nil && q.outcome.Verified && !o.Verified {
		return
	}
	q.outcome = o
	q.payout = o.TotalPayout
	if o.ClaimTxID != "" {
		q.claimTxID = o.ClaimTxID
	}
}

// noteRetry 記錄一次唯讀輪詢，回傳累計次數。
func (q *QueuedSpin) noteRetry() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.retries++
	q.lastRetryAt = time.Now()
	return q.retries
}

// fail 記下錯誤並進入 FAILED。
func (q *QueuedSpin) fail(err error) {
	q.mu.Lock()
	if q.status.Terminal() {
		q.mu.Unlock()
		return
	}
	if err != nil {
		q.errText = err.Error()
	}
	q.status = StatusFailed
	close(q.done)
	q.mu.Unlock()
}

// expire 記下原因並進入 EXPIRED。
func (q *QueuedSpin) expire(reason string) {
	q.mu.Lock()
	if q.status.Terminal() {
		q.mu.Unlock()
		return
	}
	q.errText = reason
	q.status = StatusExpired
	close(q.done)
	q.mu.Unlock()
}

// SpinSnapshot 是 QueuedSpin 的唯讀快照，供呼叫端/傳輸層使用。
type SpinSnapshot struct {
	ID           uint64     `json:"id"`
	Status       SpinStatus `json:"status"`
	StakePerLine uint64     `json:"stake_per_line"`
	LineCount    int        `json:"line_count"`
	TotalStake   uint64     `json:"total_stake"`
	CreatedAt    time.Time  `json:"created_at"`

	Commitment adapter.BetCommitment `json:"commitment"`
	ClaimTxID  string                `json:"claim_tx_id,omitempty"`

	Outcome *adapter.SpinOutcome `json:"outcome,omitempty"`
	Payout  uint64               `json:"payout"`

	Error       string    `json:"error,omitempty"`
	Retries     int       `json:"retries"`
	LastRetryAt time.Time `json:"last_retry_at,omitzero"`
}

// Snapshot 取得當下的唯讀快照。
// Outcome 為淺拷貝：結果一旦寫入就不再被引擎改動，切片可安全共享。
func (q *QueuedSpin) Snapshot() SpinSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := SpinSnapshot{
		ID:           q.id,
		Status:       q.status,
		StakePerLine: q.stakePerLine,
		LineCount:    q.lineCount,
		TotalStake:   q.totalStake,
		CreatedAt:    q.createdAt,
		Commitment:   q.commit,
		ClaimTxID:    q.claimTxID,
		Payout:       q.payout,
		Error:        q.errText,
		Retries:      q.retries,
		LastRetryAt:  q.lastRetryAt,
	}
	if q.outcome != nil {
		o := *q.outcome
		s.Outcome = &o
	}
	return s
}
