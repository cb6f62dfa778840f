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
	"crypto/sha512"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/ledger"
	"github.com/zintix-labs/chainspin/ledger/memledger"
	"github.com/zintix-labs/chainspin/sdk/grid"
	"github.com/zintix-labs/chainspin/sdk/wincalc"
	"github.com/zintix-labs/chainspin/spec"
)

// 合約方法名稱（adapter 與 SlotContract 共用的協定常數）。
const (
	methodConfig = "config"
	methodSpin   = "spin"
	methodClaim  = "claim"
)

const betKeyDomain = "chainspin/betkey"

// pendingBet 是合約內一筆尚未 claim 的押注。
type pendingBet struct {
	sender       string
	stakePerUnit uint64
	lineCount    int
	submitRound  ledger.Round
	claimRound   ledger.Round
	claimed      bool
}

// SlotContract 是跑在 memledger 上的老虎機合約。
//
// 它與 adapter 的本地回算共用同一套 grid/wincalc 程式碼，
// 所以本地結果與「鏈上」權威結果必然逐位元一致——這正是
// 真實合約對本系統的要求。
//
// memledger 序列化所有合約呼叫，內部狀態不需要額外上鎖。
type SlotContract struct {
	setting *spec.MachineSetting
	gen     *grid.Generator
	ev      *wincalc.Evaluator
	bets    map[string]*pendingBet
}

var _ memledger.AppHandler = (*SlotContract)(nil)

// NewSlotContract 以機台設定建立合約；設定必須已通過 Init。
func NewSlotContract(ms *spec.MachineSetting) (*SlotContract, error) {
	g, err := grid.NewGenerator(ms)
	if err != nil {
		return nil, err
	}
	return &SlotContract{
		setting: ms,
		gen:     g,
		ev:      wincalc.NewEvaluator(ms),
		bets:    make(map[string]*pendingBet),
	}, nil
}

// OnCall 實作 memledger.AppHandler。
func (sc *SlotContract) OnCall(call *memledger.CallCtx) ([]byte, [][]byte, error) {
	switch call.Method {
	case methodConfig:
		return sc.onConfig()
	case methodSpin:
		return sc.onSpin(call)
	case methodClaim:
		return sc.onClaim(call)
	default:
		return nil, nil, errs.Kindf(errs.KindContractError, "unknown method %q", call.Method)
	}
}

func (sc *SlotContract) onConfig() ([]byte, [][]byte, error) {
	data, err := json.Marshal(sc.setting)
	if err != nil {
		return nil, nil, errs.Wrap(err, "marshal machine setting")
	}
	return data, nil, nil
}

// onSpin 驗證伴隨付款並登記押注，回傳 bet key。
//
// args: [stakePerUnit BE8, lineCount BE8, playerIndex BE8]
// playerIndex 只作為承諾多樣性的 entropy，每次送出都必須是新值。
func (sc *SlotContract) onSpin(call *memledger.CallCtx) ([]byte, [][]byte, error) {
	if len(call.Args) != 3 {
		return nil, nil, errs.Kindf(errs.KindContractError, "spin expects 3 args, got %d", len(call.Args))
	}
	for i, a := range call.Args {
		if len(a) != 8 {
			return nil, nil, errs.Kindf(errs.KindContractError, "spin arg %d must be 8 bytes", i)
		}
	}
	stake := binary.BigEndian.Uint64(call.Args[0])
	lines := int(binary.BigEndian.Uint64(call.Args[1]))
	playerIndex := call.Args[2]

	if err := sc.setting.ValidateBet(stake, lines); err != nil {
		return nil, nil, errs.WrapKind(err, errs.KindContractError, "bet rejected")
	}

	// 付款檢查：同組內必須有指向合約帳戶、金額剛好等於總押注的付款
	required := stake * uint64(lines)
	if call.Payment == nil {
		return nil, nil, errs.NewKind(errs.KindContractError, "spin requires an accompanying payment")
	}
	if call.Payment.Receiver != memledger.AppAddress(call.AppID) {
		return nil, nil, errs.Kindf(errs.KindContractError, "payment receiver %s is not the app account", call.Payment.Receiver)
	}
	if call.Payment.Amount != required {
		return nil, nil, errs.Kindf(errs.KindContractError, "payment %d != required stake %d", call.Payment.Amount, required)
	}

	key := deriveBetKey(call.Sender, playerIndex, call.Round)
	keyStr := string(key)
	if _, dup := sc.bets[keyStr]; dup {
		return nil, nil, errs.NewKind(errs.KindContractError, "bet key collision, regenerate player index")
	}
	sc.bets[keyStr] = &pendingBet{
		sender:       call.Sender,
		stakePerUnit: stake,
		lineCount:    lines,
		submitRound:  call.Round,
		claimRound:   call.Round + 1,
	}
	log := fmt.Sprintf("bet accepted round=%d claim=%d", call.Round, call.Round+1)
	return key, [][]byte{[]byte(log)}, nil
}

// onClaim 用 claim 回合的種子重建盤面、算分並派彩。
//
// args: [betKey]；回傳派彩金額 BE8。
func (sc *SlotContract) onClaim(call *memledger.CallCtx) ([]byte, [][]byte, error) {
	if len(call.Args) != 1 {
		return nil, nil, errs.Kindf(errs.KindContractError, "claim expects 1 arg, got %d", len(call.Args))
	}
	bet, ok := sc.bets[string(call.Args[0])]
	if !ok {
		return nil, nil, errs.NewKind(errs.KindContractError, "unknown bet key")
	}
	if bet.claimed {
		return nil, nil, errs.NewKind(errs.KindContractError, "bet already claimed")
	}
	seed, err := call.Seed(bet.claimRound)
	if err != nil {
		return nil, nil, err
	}

	screen := sc.gen.Generate(call.Args[0], seed)
	res := sc.ev.Evaluate(bet.stakePerUnit, bet.lineCount, screen)

	if res.Total > 0 {
		if err := call.Pay(memledger.AppAddress(call.AppID), bet.sender, res.Total); err != nil {
			return nil, nil, err
		}
	}
	bet.claimed = true

	ret := binary.BigEndian.AppendUint64(nil, res.Total)
	logs := [][]byte{[]byte(fmt.Sprintf("claim paid=%d wins=%d", res.Total, len(res.Wins)))}
	return ret, logs, nil
}

// MaxPayout 回傳該押注理論上限，合約與測試用它驗證不超付。
func (sc *SlotContract) MaxPayout(stakePerUnit uint64, lineCount int) uint64 {
	return sc.setting.Paytable.MaxMultiplier * stakePerUnit * uint64(lineCount)
}

// Evaluator 暴露合約的算分器（模擬統計用）。
func (sc *SlotContract) Evaluator() *wincalc.Evaluator { return sc.ev }

// deriveBetKey 由 (sender, playerIndex, round) 導出 bet key。
func deriveBetKey(sender string, playerIndex []byte, round ledger.Round) []byte {
	buf := make([]byte, 0, len(betKeyDomain)+len(sender)+len(playerIndex)+8)
	buf = append(buf, betKeyDomain...)
	buf = append(buf, sender...)
	buf = append(buf, playerIndex...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(round))
	digest := sha512.Sum512_256(buf)
	return digest[:]
}
