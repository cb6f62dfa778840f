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

// Package memledger 是記憶體內的帳本實作，供模擬 adapter 與測試使用。
//
// 特性：
//   - 完全決定性：同一個 baseSeed 產生同一串區塊種子與交易 ID，可重現回放。
//   - 回合推進兩種模式：RoundDuration > 0 時依時鐘推進；
//     RoundDuration == 0 時只靠 AdvanceRound()（測試用）與交易確認推進。
//   - 交易組原子性：全組套用或全組失敗，與真實帳本一致。
//   - 合約邏輯由外部以 AppHandler 註冊，memledger 本身不含遊戲語意。
package memledger

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
)

// MinFee 是模擬帳本的單筆交易協定費用。
const MinFee uint64 = 1000

const seedDomain = "memledger/blockseed"

// AppHandler 處理合約呼叫；由使用方（模擬 adapter）註冊。
// 回傳值會放進 GroupResult.Returns，logs 放進 GroupResult.Logs。
// 回傳錯誤時整組交易回滾。
type AppHandler interface {
	OnCall(call *CallCtx) (ret []byte, logs [][]byte, err error)
}

// CallCtx 是單次合約呼叫的執行環境。
// 合約透過它讀取參數、伴隨付款、歷史種子，並對暫存帳本轉帳。
type CallCtx struct {
	Round   ledger.Round // 本組交易確認的回合
	Sender  string
	AppID   uint64
	Method  string
	Args    [][]byte
	Payment *ledger.Transaction // 同組內的伴隨付款（無則為 nil）

	l      *Ledger
	staged map[string]uint64
}

// Seed 取回指定回合的區塊種子；只允許已存在的回合。
func (c *CallCtx) Seed(round ledger.Round) ([]byte, error) {
	if round > c.Round {
		return nil, errs.Kindf(errs.KindContractError, "seed of round %d not yet committed at round %d", round, c.Round)
	}
	return c.l.seedAt(round), nil
}

// Balance 讀取暫存後的帳戶餘額。
func (c *CallCtx) Balance(addr string) uint64 {
	if v, ok := c.staged[addr]; ok {
		return v
	}
	return c.l.balances[addr]
}

// Pay 在暫存帳本上轉帳；餘額不足回傳 ContractError。
func (c *CallCtx) Pay(from, to string, amount uint64) error {
	fromBal := c.Balance(from)
	if fromBal < amount {
		return errs.Kindf(errs.KindContractError, "account %s balance %d < %d", from, fromBal, amount)
	}
	c.staged[from] = fromBal - amount
	c.staged[to] = c.Balance(to) + amount
	return nil
}

// AppAddress 回傳合約的資金帳戶地址。
func AppAddress(appID uint64) string {
	return fmt.Sprintf("app-%d", appID)
}

// AppAddress 實作 ledger.Client。
func (l *Ledger) AppAddress(appID uint64) string { return AppAddress(appID) }

// Config 控制模擬帳本的行為。
type Config struct {
	// BaseSeed 決定整條鏈的種子序列與交易 ID；同值同序列。
	BaseSeed int64
	// RoundDuration > 0 時回合依時鐘推進；0 則只靠 AdvanceRound 與交易確認。
	RoundDuration time.Duration
	// GenesisID 寫進 SuggestedParams，僅供辨識。
	GenesisID string
}

// Ledger 實作 ledger.Client。
type Ledger struct {
	mu       sync.Mutex
	balances map[string]uint64
	apps     map[uint64]AppHandler

	baseSeed  int64
	roundDur  time.Duration
	genesisID string
	startAt   time.Time
	round     ledger.Round // 手動/確認推進的基準回合
	rng       *core.Core   // 交易 ID 生成
}

var _ ledger.Client = (*Ledger)(nil)

// New 建立模擬帳本。
func New(cfg Config) *Ledger {
	if cfg.GenesisID == "" {
		cfg.GenesisID = "memledger-v1"
	}
	return &Ledger{
		balances:  make(map[string]uint64),
		apps:      make(map[uint64]AppHandler),
		baseSeed:  cfg.BaseSeed,
		roundDur:  cfg.RoundDuration,
		genesisID: cfg.GenesisID,
		startAt:   time.Now(),
		round:     1,
		rng:       core.New(core.NewPCG64WithSeed(cfg.BaseSeed)),
	}
}

// RegisterApp 註冊合約處理器。
func (l *Ledger) RegisterApp(appID uint64, h AppHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.apps[appID] = h
}

// Fund 直接鑄造餘額到帳戶（模擬入金）。
func (l *Ledger) Fund(addr string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[addr] += amount
}

// AdvanceRound 手動推進一個回合（測試用）。
func (l *Ledger) AdvanceRound() ledger.Round {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.round = l.currentLocked() + 1
	if l.roundDur > 0 {
		// 時鐘模式下把基準同步到新的回合，避免倒退
		l.startAt = time.Now()
	}
	return l.round
}

// SuggestedParams 實作 ledger.Client。
func (l *Ledger) SuggestedParams(_ context.Context) (ledger.SuggestedParams, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur := l.currentLocked()
	return ledger.SuggestedParams{
		Fee:        MinFee,
		FirstValid: cur,
		LastValid:  cur + 1000,
		GenesisID:  l.genesisID,
	}, nil
}

// AccountBalance 實作 ledger.Client；未知帳戶餘額為 0。
func (l *Ledger) AccountBalance(_ context.Context, address string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[address], nil
}

// CurrentRound 實作 ledger.Client。
func (l *Ledger) CurrentRound(_ context.Context) (ledger.Round, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentLocked(), nil
}

// BlockSeed 實作 ledger.Client；回合尚未存在時回傳可重試的錯誤。
func (l *Ledger) BlockSeed(_ context.Context, round ledger.Round) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if round > l.currentLocked() {
		return nil, errs.Kindf(errs.KindNetwork, "round %d not yet available", round)
	}
	return l.seedAt(round), nil
}

// ReadCall 實作 ledger.Client：以拋棄式暫存執行合約，不落地任何效果。
func (l *Ledger) ReadCall(_ context.Context, appID uint64, method string, args [][]byte) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.apps[appID]
	if !ok {
		return nil, errs.Kindf(errs.KindContractError, "app %d not found", appID)
	}
	call := &CallCtx{
		Round:  l.currentLocked(),
		Method: method,
		Args:   args,
		AppID:  appID,
		l:      l,
		staged: make(map[string]uint64),
	}
	ret, _, err := h.OnCall(call)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// SubmitGroup 實作 ledger.Client。
//
// 交易組會被放進下一個區塊：確認回合 = 當前回合 + 1。
// 時鐘模式下會等到該回合真的到來（可被 ctx 取消）；
// 手動模式下直接把基準回合推進到確認回合。
func (l *Ledger) SubmitGroup(ctx context.Context, group []ledger.SignedTxn) (ledger.GroupResult, error) {
	if len(group) == 0 {
		return ledger.GroupResult{}, errs.NewKind(errs.KindTransactionFailed, "empty transaction group")
	}
	for i, st := range group {
		if len(st.Sig) == 0 {
			return ledger.GroupResult{}, errs.Kindf(errs.KindTransactionFailed, "transaction %d is unsigned", i)
		}
	}

	l.mu.Lock()
	target := l.currentLocked() + 1
	l.mu.Unlock()

	if l.roundDur > 0 {
		if err := l.waitForRound(ctx, target); err != nil {
			return ledger.GroupResult{}, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// 暫存套用：全組成功才 commit
	staged := make(map[string]uint64)
	balance := func(addr string) uint64 {
		if v, ok := staged[addr]; ok {
			return v
		}
		return l.balances[addr]
	}

	result := ledger.GroupResult{
		TxIDs:          make([]string, len(group)),
		ConfirmedRound: target,
		Returns:        make([][]byte, len(group)),
		Logs:           make([][][]byte, len(group)),
	}

	var payment *ledger.Transaction
	for i := range group {
		txn := &group[i].Txn
		result.TxIDs[i] = l.nextTxID()

		// 手續費
		fee := txn.Fee
		if fee < MinFee {
			return ledger.GroupResult{}, errs.Kindf(errs.KindTransactionFailed, "transaction %d fee %d below min %d", i, fee, MinFee)
		}
		if bal := balance(txn.Sender); bal < fee {
			return ledger.GroupResult{}, errs.Kindf(errs.KindTransactionFailed, "sender %s can not cover fee", txn.Sender)
		}
		staged[txn.Sender] = balance(txn.Sender) - fee

		switch txn.Type {
		case ledger.TxPayment:
			if bal := balance(txn.Sender); bal < txn.Amount {
				return ledger.GroupResult{}, errs.Kindf(errs.KindTransactionFailed, "sender %s balance %d < %d", txn.Sender, bal, txn.Amount)
			}
			staged[txn.Sender] = balance(txn.Sender) - txn.Amount
			staged[txn.Receiver] = balance(txn.Receiver) + txn.Amount
			payment = txn

		case ledger.TxAppCall:
			h, ok := l.apps[txn.AppID]
			if !ok {
				return ledger.GroupResult{}, errs.Kindf(errs.KindTransactionFailed, "app %d not found", txn.AppID)
			}
			call := &CallCtx{
				Round:   target,
				Sender:  txn.Sender,
				AppID:   txn.AppID,
				Method:  txn.Method,
				Args:    txn.Args,
				Payment: payment,
				l:       l,
				staged:  staged,
			}
			ret, logs, err := h.OnCall(call)
			if err != nil {
				// 合約錯誤原樣往上傳（分類已由 handler 決定）
				return ledger.GroupResult{}, errs.Wrap(err, fmt.Sprintf("app %d method %s rejected", txn.AppID, txn.Method))
			}
			result.Returns[i] = ret
			result.Logs[i] = logs

		default:
			return ledger.GroupResult{}, errs.Kindf(errs.KindTransactionFailed, "transaction %d has unknown type %d", i, txn.Type)
		}
	}

	// commit
	for addr, v := range staged {
		l.balances[addr] = v
	}
	if l.round < target {
		l.round = target
		if l.roundDur > 0 {
			l.startAt = time.Now()
		}
	}
	return result, nil
}

// ============================================================
// ** 以下內部方法 **
// ============================================================

func (l *Ledger) currentLocked() ledger.Round {
	if l.roundDur <= 0 {
		return l.round
	}
	elapsed := ledger.Round(time.Since(l.startAt) / l.roundDur)
	return l.round + elapsed
}

// waitForRound 等待時鐘推進到目標回合。
func (l *Ledger) waitForRound(ctx context.Context, target ledger.Round) error {
	for {
		l.mu.Lock()
		cur := l.currentLocked()
		l.mu.Unlock()
		if cur >= target {
			return nil
		}
		select {
		case <-ctx.Done():
			return errs.WrapKind(ctx.Err(), errs.KindTimeout, "waiting for round confirmation")
		case <-time.After(l.roundDur / 4):
		}
	}
}

// seedAt 計算回合種子：sha512_256(domain ‖ baseSeed ‖ round)。
// 與查詢順序無關，保證可重現。
func (l *Ledger) seedAt(round ledger.Round) []byte {
	buf := make([]byte, 0, len(seedDomain)+16)
	buf = append(buf, seedDomain...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(l.baseSeed))
	buf = binary.BigEndian.AppendUint64(buf, uint64(round))
	digest := sha512.Sum512_256(buf)
	return digest[:]
}

func (l *Ledger) nextTxID() string {
	return fmt.Sprintf("%016X%016X", l.rng.Uint64(), l.rng.Uint64())
}
