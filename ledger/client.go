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

// Package ledger 定義與帳本網路互動的最小能力集合。
//
// adapter 只透過這個介面碰帳本：送交易組、查餘額、查當前區塊高度、
// 取區塊種子、索取建議參數。實際的交易編碼與簽章屬於注入的能力
// （WalletSigner），不在本套件的關注範圍。
package ledger

import "context"

// Round 是區塊高度（帳本回合）。
type Round uint64

// SuggestedParams 是送交易前向節點索取的參數。
// Fee 為單筆交易的協定費用，一律從帳本讀取，不得寫死。
type SuggestedParams struct {
	Fee        uint64
	FirstValid Round
	LastValid  Round
	GenesisID  string
}

// TxType 區分交易種類。
type TxType uint8

const (
	// TxPayment 單純轉帳。
	TxPayment TxType = iota
	// TxAppCall 合約呼叫。
	TxAppCall
)

// Transaction 是送往帳本的單筆交易（未簽章）。
// Payment 欄位與 AppCall 欄位依 Type 擇一使用。
type Transaction struct {
	Type   TxType
	Sender string
	Fee    uint64

	// Payment
	Receiver string
	Amount   uint64

	// AppCall
	AppID  uint64
	Method string
	Args   [][]byte

	Note       []byte
	FirstValid Round
	LastValid  Round
}

// SignedTxn 是簽章後的交易。
type SignedTxn struct {
	Txn Transaction
	Sig []byte
}

// SignFn 非同步簽章函式；由錢包提供，呼叫端不得假設其實作細節。
type SignFn func(ctx context.Context, txns []Transaction) ([]SignedTxn, error)

// WalletSigner 是注入的錢包能力：地址 + 非同步簽章函式。
type WalletSigner struct {
	Address string
	Sign    SignFn
}

// GroupResult 是一組交易上鏈後的結果。
//
// Returns 與 Logs 與交易組内的合約呼叫逐筆對齊
// （非合約呼叫的位置為 nil）；呼叫端自行解碼型別。
type GroupResult struct {
	TxIDs          []string
	ConfirmedRound Round
	Returns        [][]byte
	Logs           [][][]byte
}

// Client 是帳本網路的能力介面。
//
// 所有方法皆接受 context 以支援逾時與取消；
// 唯讀方法（AccountBalance / CurrentRound / BlockSeed / SuggestedParams）
// 無副作用，可安全重試。SubmitGroup 會改變帳本狀態，嚴禁盲目重送。
type Client interface {
	// SuggestedParams 取得目前建議的交易參數（含協定費用）。
	SuggestedParams(ctx context.Context) (SuggestedParams, error)
	// SubmitGroup 原子性地送出一組交易：全部成功或全部失敗。
	SubmitGroup(ctx context.Context, group []SignedTxn) (GroupResult, error)
	// AccountBalance 查詢帳戶餘額（最小貨幣單位）。
	AccountBalance(ctx context.Context, address string) (uint64, error)
	// CurrentRound 查詢當前區塊高度。
	CurrentRound(ctx context.Context) (Round, error)
	// BlockSeed 取出指定區塊的 32-byte 種子；區塊尚未存在時回傳錯誤。
	BlockSeed(ctx context.Context, round Round) ([]byte, error)
	// ReadCall 唯讀合約呼叫：不上鏈、不收費、不改變狀態，
	// 用於查詢合約設定這類模擬執行即可取得的資料。
	ReadCall(ctx context.Context, appID uint64, method string, args [][]byte) ([]byte, error)
	// AppAddress 導出合約的資金帳戶地址。導出規則是帳本協定的一部分，
	// 各網路不同，因此屬於 Client 能力而非呼叫端常數。純函式，無副作用。
	AppAddress(appID uint64) string
}
