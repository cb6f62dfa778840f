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
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/ledger"
	"github.com/zintix-labs/chainspin/sdk/grid"
	"github.com/zintix-labs/chainspin/sdk/wincalc"
	"github.com/zintix-labs/chainspin/spec"
)

// liveAdapter 對真實（或 memledger 模擬的）合約操作。
//
// LiveFixedLine 與 LiveWays 都建立在它之上：協定完全相同，
// 算分方式由抓回來的設定決定。
type liveAdapter struct {
	client ledger.Client
	signer ledger.WalletSigner
	appID  uint64

	// 設定在 Initialize 後唯讀，可被多個 goroutine 併發讀取。
	initOnce sync.Once
	initErr  error
	setting  *spec.MachineSetting
	gen      *grid.Generator
	ev       *wincalc.Evaluator
}

// Initialize 抓取並快取合約設定。
//
// 冪等：同一實例最多對網路抓取一次，重複呼叫直接回傳第一次的結果，
// 不會重抓也不會產生設定漂移。
func (a *liveAdapter) Initialize(ctx context.Context) error {
	a.initOnce.Do(func() {
		data, err := a.client.ReadCall(ctx, a.appID, methodConfig, nil)
		if err != nil {
			a.initErr = errs.WrapKind(err, errs.KindNotInitialized, "fetch contract config")
			return
		}
		ms, err := spec.GetMachineSettingByJSON(data)
		if err != nil {
			// 設定解析不完整一律拒絕服務，不允許靜默補預設值
			a.initErr = errs.WrapKind(err, errs.KindNotInitialized, "contract config unusable")
			return
		}
		g, err := grid.NewGenerator(ms)
		if err != nil {
			a.initErr = errs.WrapKind(err, errs.KindNotInitialized, "build grid generator")
			return
		}
		a.setting = ms
		a.gen = g
		a.ev = wincalc.NewEvaluator(ms)
	})
	return a.initErr
}

// Config 回傳快取的機台設定；Initialize 前回傳 nil。
func (a *liveAdapter) Config() *spec.MachineSetting { return a.setting }

func (a *liveAdapter) ready() error {
	if a.setting == nil {
		return errs.NewKind(errs.KindNotInitialized, "adapter not initialized")
	}
	return nil
}

// SubmitSpin 送出兩段式承諾（付款 + 遊戲呼叫）。
func (a *liveAdapter) SubmitSpin(ctx context.Context, stakePerLine uint64, lineCount int) (BetCommitment, error) {
	if err := a.ready(); err != nil {
		return BetCommitment{}, err
	}
	if err := a.setting.ValidateBet(stakePerLine, lineCount); err != nil {
		return BetCommitment{}, err
	}

	params, err := a.client.SuggestedParams(ctx)
	if err != nil {
		return BetCommitment{}, errs.WrapKind(err, errs.KindNetwork, "fetch suggested params")
	}

	// 應付總額 = 押注 + 兩筆交易的協定費用（費用讀自帳本，不寫死）
	payment := stakePerLine * uint64(lineCount)
	needed := payment + 2*params.Fee
	balance, err := a.client.AccountBalance(ctx, a.signer.Address)
	if err != nil {
		return BetCommitment{}, errs.WrapKind(err, errs.KindNetwork, "fetch balance")
	}
	if balance < needed {
		return BetCommitment{}, errs.Kindf(errs.KindInsufficientBalance, "balance %d < required %d", balance, needed)
	}

	// player index：每次送出重新產生的隨機值，作為承諾多樣性
	playerIndex := make([]byte, 8)
	if _, err := rand.Read(playerIndex); err != nil {
		return BetCommitment{}, errs.Wrap(err, "generate player index")
	}

	stakeArg := binary.BigEndian.AppendUint64(nil, stakePerLine)
	linesArg := binary.BigEndian.AppendUint64(nil, uint64(lineCount))

	group := []ledger.Transaction{
		{
			Type:       ledger.TxPayment,
			Sender:     a.signer.Address,
			Receiver:   a.client.AppAddress(a.appID),
			Amount:     payment,
			Fee:        params.Fee,
			FirstValid: params.FirstValid,
			LastValid:  params.LastValid,
		},
		{
			Type:       ledger.TxAppCall,
			Sender:     a.signer.Address,
			AppID:      a.appID,
			Method:     methodSpin,
			Args:       [][]byte{stakeArg, linesArg, playerIndex},
			Fee:        params.Fee,
			FirstValid: params.FirstValid,
			LastValid:  params.LastValid,
		},
	}

	signed, err := a.signer.Sign(ctx, group)
	if err != nil {
		return BetCommitment{}, errs.WrapKind(err, errs.KindTransactionFailed, "wallet sign")
	}
	res, err := a.client.SubmitGroup(ctx, signed)
	if err != nil {
		return BetCommitment{}, errs.WrapKind(err, errs.KindTransactionFailed, "submit spin group")
	}

	if len(res.Returns) < 2 || len(res.TxIDs) < 2 {
		return BetCommitment{}, errs.NewKind(errs.KindTransactionFailed, "ledger returned truncated group result")
	}
	key := res.Returns[1]
	if len(key) == 0 {
		return BetCommitment{}, errs.NewKind(errs.KindTransactionFailed, "contract returned empty bet key")
	}
	return BetCommitment{
		Key:         key,
		TxID:        res.TxIDs[1],
		SubmitRound: res.ConfirmedRound,
		ClaimRound:  res.ConfirmedRound + 1,
	}, nil
}

// CalculateOutcomeFromSeed 抓 claim 回合的種子並本地回算（Verified=false）。
func (a *liveAdapter) CalculateOutcomeFromSeed(ctx context.Context, commit BetCommitment, stakePerLine uint64, lineCount int) (*SpinOutcome, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	seed, err := a.client.BlockSeed(ctx, commit.ClaimRound)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Sprintf("fetch seed of round %d", commit.ClaimRound))
	}
	return a.outcomeFromSeed(commit, seed, stakePerLine, lineCount), nil
}

// ClaimSpin 嘗試帳本權威的 claim；失敗則回退本地回算。
func (a *liveAdapter) ClaimSpin(ctx context.Context, commit BetCommitment, stakePerLine uint64, lineCount int) (*SpinOutcome, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}

	authoritative, claimTxID, claimErr := a.submitClaim(ctx, commit)
	seed, err := a.client.BlockSeed(ctx, commit.ClaimRound)
	if err != nil {
		// 連種子都拿不到就無法產生任何結果，讓上層保留 provisional
		return nil, errs.Wrap(err, fmt.Sprintf("fetch seed of round %d", commit.ClaimRound))
	}

	outcome := a.outcomeFromSeed(commit, seed, stakePerLine, lineCount)
	if claimErr != nil {
		// claim 失敗：本地結果立場不變，只是未驗證
		return outcome, nil
	}

	// claim 成功：帳本的派彩數字具權威性
	outcome.TotalPayout = authoritative
	outcome.ClaimTxID = claimTxID
	outcome.Verified = true
	return outcome, nil
}

// Balance 實作 MachineAdapter。
func (a *liveAdapter) Balance(ctx context.Context) (uint64, error) {
	return a.client.AccountBalance(ctx, a.signer.Address)
}

// CurrentRound 實作 MachineAdapter。
func (a *liveAdapter) CurrentRound(ctx context.Context) (ledger.Round, error) {
	return a.client.CurrentRound(ctx)
}

// ============================================================
// ** 以下內部方法 **
// ============================================================

// submitClaim 送出 claim 呼叫，回傳帳本的派彩金額與 claim 交易 ID。
func (a *liveAdapter) submitClaim(ctx context.Context, commit BetCommitment) (uint64, string, error) {
	params, err := a.client.SuggestedParams(ctx)
	if err != nil {
		return 0, "", errs.WrapKind(err, errs.KindNetwork, "fetch suggested params")
	}
	group := []ledger.Transaction{{
		Type:       ledger.TxAppCall,
		Sender:     a.signer.Address,
		AppID:      a.appID,
		Method:     methodClaim,
		Args:       [][]byte{commit.Key},
		Fee:        params.Fee,
		FirstValid: params.FirstValid,
		LastValid:  params.LastValid,
	}}
	signed, err := a.signer.Sign(ctx, group)
	if err != nil {
		return 0, "", errs.Wrap(err, "wallet sign claim")
	}
	res, err := a.client.SubmitGroup(ctx, signed)
	if err != nil {
		return 0, "", err
	}
	if len(res.Returns) < 1 || len(res.Returns[0]) != 8 || len(res.TxIDs) < 1 {
		return 0, "", errs.NewKind(errs.KindContractError, "claim returned malformed payout")
	}
	return binary.BigEndian.Uint64(res.Returns[0]), res.TxIDs[0], nil
}

// outcomeFromSeed 是 provisional 與 claim-fallback 共用的回算路徑；
// 兩者必須走同一段程式碼，結果才會完全一致。
func (a *liveAdapter) outcomeFromSeed(commit BetCommitment, seed []byte, stakePerLine uint64, lineCount int) *SpinOutcome {
	screen := a.gen.Generate(commit.Key, seed)
	res := a.ev.Evaluate(stakePerLine, lineCount, screen)
	return &SpinOutcome{
		Grid:        screen,
		Wins:        res.Wins,
		TotalPayout: res.Total,
		Round:       commit.ClaimRound,
		Seed:        seed,
		Commitment:  commit.Key,
		Verified:    false,
	}
}
