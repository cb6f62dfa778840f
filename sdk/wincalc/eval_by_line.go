package wincalc

// evalByLine 依線下注規則計算盤面分數（由左至右）。
//
// 單線語意：
//   - 從第 1 軸起連續同圖標（wild 可代任）構成一串，查 run 長度的倍數。
//   - 純 wild 前綴另外以 wild 自身的賠付試算，與 normal 串取較大者。
//   - 每線最多記一個中獎項；各線派彩彼此獨立、相加（重疊格位不互斥）。
func evalByLine(ev *Evaluator, stakePerUnit uint64, lineCount int, screen []int16) Result {
	var result Result

	paidMask := ev.paidMask
	// 沒有可計分圖標，直接回傳空結果
	if paidMask == 0 {
		return result
	}
	if lineCount > ev.lineCount {
		lineCount = ev.lineCount
	}

	cols := ev.Cols
	wildMask := ev.wildMask
	payFlat := ev.payFlat
	payIdx := ev.payIdx

	// 逐線
	for lineIdx := 0; lineIdx < lineCount; lineIdx++ {
		start := ev.lineIdx[lineIdx]
		line := ev.lineFlat[start : start+cols] // 固定長度，BCE 友善

		// ── 首格初始化（迴圈外處理，避免每圈 pos==0 分支） ──
		firstSym := screen[line[0]] // wild-only 分支用的基準符號
		wildRun := 0                // 連續 wild 前綴長度
		normSym := int16(-1)        // 首個非 wild 且可計分的符號
		normRun := 0                // normal 串長（包含前綴 wild）

		if wildMask&(1<<uint(firstSym)) != 0 {
			wildRun = 1
		} else {
			// 首格非 wild：若不可計分則此線 0 分
			if paidMask&(1<<uint(firstSym)) == 0 {
				continue // 下一線
			}
			normSym = firstSym
			normRun = 1
		}

		// ── 主迴圈：從第二格開始 ──
		for pos := 1; pos < cols; pos++ {
			s := screen[line[pos]]
			isWild := (wildMask&(1<<uint(s)) != 0)

			// A) 純 wild 前綴：前面全 wild 且本格仍 wild 才延長
			if (normSym < 0) && (wildRun == pos) && isWild {
				wildRun++
				continue
			}

			// B) 尚未起手 normal，且本格是首個非 wild
			if normSym < 0 && !isWild {
				if paidMask&(1<<uint(s)) == 0 {
					// 首個非 wild 也不可計分 → 只剩 wild-only 分支可比
					break
				}
				normSym = s
				normRun = wildRun + 1 // 把前綴 wild 併入 normal 串
				continue
			}

			// C) normal 已起手：允許同符號或 wild 代任延長
			if normSym >= 0 {
				if s == normSym || isWild {
					normRun++
					continue
				}
				break
			}
		}

		// ── 查表並取較大者 ──
		var wildWin, normWin uint64
		if wildRun > 0 {
			wildWin = stakePerUnit * payFlat[payIdx[firstSym]+(wildRun-1)]
		}
		if normRun > 0 {
			normWin = stakePerUnit * payFlat[payIdx[normSym]+(normRun-1)]
		}

		sym, hitLen, win := normSym, normRun, normWin
		if wildWin > normWin {
			sym, hitLen, win = firstSym, wildRun, wildWin
		}

		// 計分
		if win > 0 {
			positions := make([]int16, hitLen)
			copy(positions, line[:hitLen])
			result.Wins = append(result.Wins, LineWin{
				Line:      lineIdx,
				Symbol:    sym,
				Run:       hitLen,
				Ways:      1,
				Payout:    win,
				Positions: positions,
			})
			result.Total += win
		}
	}
	return result
}
