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

package recorder

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/errs"
)

// Journal 把終態 spin 寫成 zstd 壓縮的 JSONL 流（一行一筆）。
//
// 實作 chainspin.Sink。寫入方負責呼叫 Close 沖洗壓縮尾塊，
// 否則讀取端會在流尾遇到截斷錯誤。
type Journal struct {
	mu  sync.Mutex
	zw  *zstd.Encoder
	enc *json.Encoder
}

// NewJournal 在 w 之上建立 journal。
func NewJournal(w io.Writer) (*Journal, error) {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, errs.Wrap(err, "create zstd writer failed")
	}
	return &Journal{
		zw:  zw,
		enc: json.NewEncoder(zw),
	}, nil
}

// RecordSpin 實作 chainspin.Sink。
func (j *Journal) RecordSpin(snap chainspin.SpinSnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.zw == nil {
		return errs.NewWarn("journal already closed")
	}
	if err := j.enc.Encode(snap); err != nil {
		return errs.Wrap(err, "encode spin journal entry failed")
	}
	return nil
}

// Close 沖洗並關閉壓縮流。底層 writer 的關閉由呼叫端負責。
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.zw == nil {
		return nil
	}
	err := j.zw.Close()
	j.zw = nil
	if err != nil {
		return errs.Wrap(err, "close journal failed")
	}
	return nil
}

// ReadJournal 讀回 journal 的全部內容。
func ReadJournal(r io.Reader) ([]chainspin.SpinSnapshot, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, errs.Wrap(err, "create zstd reader failed")
	}
	defer zr.Close()

	var out []chainspin.SpinSnapshot
	dec := json.NewDecoder(zr)
	for {
		var snap chainspin.SpinSnapshot
		if err := dec.Decode(&snap); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errs.Wrap(err, "decode spin journal entry failed")
		}
		out = append(out, snap)
	}
	return out, nil
}

// Tee 把多個 sink 合成一個：全部都收到同一筆快照，
// 第一個錯誤會被回傳（其餘 sink 照樣收到）。
func Tee(sinks ...chainspin.Sink) chainspin.Sink {
	return teeSink(sinks)
}

type teeSink []chainspin.Sink

func (t teeSink) RecordSpin(snap chainspin.SpinSnapshot) error {
	var first error
	for _, s := range t {
		if err := s.RecordSpin(snap); err != nil && first == nil {
			first = err
		}
	}
	return first
}
