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

package wincalc

// evalByWay 依 ways 下注規則計算盤面分數（由左至右）。
//
// 單圖標語意：
//   - 從第 1 軸起連續有該圖標（第 2 軸起 wild 可代任）即延長 run。
//   - 組合數 = 各軸命中顆數的乘積；派彩 = 押注 × 倍數 × 組合數。
//   - wild 帶頭自成一項（只算 wild 本身），且需要 wild 有自己的賠付。
//   - 每圖標最多記一個中獎項；各圖標派彩相加。
func evalByWay(ev *Evaluator, stakePerUnit uint64, _ int, screen []int16) Result {
	var result Result

	cols, rows := ev.Cols, ev.Rows
	symN := ev.symbolCount
	wildMask := ev.wildMask
	paidMask := ev.paidMask
	keepMask := wildMask | paidMask
	isWildPaid := (wildMask & paidMask) != 0

	// 每圖標×每軸計數與每軸 wild 聚合計數
	arr := make([]int, symN*cols)
	wc := make([]int, cols)
	_ = screen[rows*cols-1] // BCE hint
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			s := int(screen[r*cols+c])
			if uint(s) >= uint(symN) {
				continue
			}
			arr[s*cols+c]++
			if wildMask&(1<<uint(s)) != 0 {
				wc[c]++
			}
		}
	}

	// 首欄候選去重（≤64 符號 → bitset）
	var seen uint64 = 0

	for r := 0; r < rows; r++ {
		s := screen[r*cols]
		if uint(int(s)) >= uint(symN) {
			continue
		}
		bit := uint64(1) << uint(s)
		if (keepMask&bit) == 0 || (seen&bit) != 0 {
			continue
		}
		seen |= bit

		// ── A) wild 帶頭：只算 wild 本身 ──
		if (wildMask&bit) != 0 && isWildPaid {
			run := 1
			ways := wc[0]
			for c := 1; c < cols; c++ {
				if wc[c] == 0 {
					break
				}
				ways *= wc[c]
				run++
			}
			mult := ev.payFlat[ev.payIdx[s]+(run-1)]
			if mult > 0 {
				win := stakePerUnit * mult * uint64(ways)
				result.Wins = append(result.Wins, LineWin{
					Line:      -1,
					Symbol:    s,
					Run:       run,
					Ways:      ways,
					Payout:    win,
					Positions: ev.collectWayPositions(screen, s, run, true),
				})
				result.Total += win
			}
			continue
		}

		// ── B) normal 帶頭：首欄 wild 不可併入，第 2 軸起可代任 ──
		if (paidMask & bit) != 0 {
			base := int(s) * cols
			run := 1
			ways := arr[base]
			for c := 1; c < cols; c++ {
				sum := arr[base+c] + wc[c]
				if sum == 0 {
					break
				}
				ways *= sum
				run++
			}
			mult := ev.payFlat[ev.payIdx[s]+(run-1)]
			if mult > 0 {
				win := stakePerUnit * mult * uint64(ways)
				result.Wins = append(result.Wins, LineWin{
					Line:      -1,
					Symbol:    s,
					Run:       run,
					Ways:      ways,
					Payout:    win,
					Positions: ev.collectWayPositions(screen, s, run, false),
				})
				result.Total += win
			}
		}
	}
	return result
}

// collectWayPositions 收集 run 範圍內構成該中獎項的格位。
// wildOnly 為 wild 帶頭項：只收 wild；否則首欄只收自身，其後自身與 wild 皆收。
func (ev *Evaluator) collectWayPositions(screen []int16, sym int16, run int, wildOnly bool) []int16 {
	cols, rows := ev.Cols, ev.Rows
	wildMask := ev.wildMask
	positions := make([]int16, 0, run*rows)
	for c := 0; c < run; c++ {
		for r := 0; r < rows; r++ {
			idx := int16(r*cols + c)
			s := screen[idx]
			isWild := wildMask&(1<<uint(s)) != 0
			switch {
			case wildOnly && isWild:
				positions = append(positions, idx)
			case !wildOnly && s == sym:
				positions = append(positions, idx)
			case !wildOnly && c > 0 && isWild:
				positions = append(positions, idx)
			}
		}
	}
	return positions
}
