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

package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================
// ** 結構宣告 **
// ============================================================

// EstimatorSessions 把多個獨立模擬 session 的報表彙總成
// 「一個玩家坐下來玩一段時間會體驗到什麼」的敘事。
type EstimatorSessions struct {
	RtpStat    RtpStat
	ClaimStat  ClaimStat
	BucketStat BucketStat
}

// Rtp敘事
type RtpStat struct {
	ExpMedian PointStat // 描述體驗的中位數
	ExpPerc   ExpPerc   // 描述 session 的分布(對應RTP)
	RtpPerc   RtpPerc   // 描述 RTP 的分布(對應多少比例的 session)
}

// 用 session 分位數視角看: 最差10％session的RTP 最差33%session的RTP ...
type ExpPerc struct {
	ExpP10 PointStat
	ExpP33 PointStat
	ExpP67 PointStat
	ExpP90 PointStat
}

// 用 RTP 分位數視角看 session: 有多少 session 體驗到了30%RTP 有多少體驗到了50%RTP ...
type RtpPerc struct {
	Rtp30  PointStat
	Rtp50  PointStat
	Rtp70  PointStat
	Rtp100 PointStat
}

// PointStat 點估計 回傳 估計值 以及信賴區間
type PointStat struct {
	Hat float64
	CI  CI
}

// Claim 敘事：跨所有 session 的驗證行為
type ClaimStat struct {
	VerifiedRate PointStat // 派彩經鏈上驗證的比例
	FallbackRate PointStat // 回退本地回算的比例
	HitRate      PointStat // 有贏分的局數比例
}

// 對應分桶的統計
type BucketStat struct {
	BucketLable []string     // 分桶標籤
	BucketCount []EventCount // 分桶事件點估計
}

// 事件點估計（每個 session 落入某桶 0/1/2/3+ 次）
type EventCount struct {
	Zero PointStat
	One  PointStat
	Two  PointStat
	More PointStat
}

// ============================================================
// ** 對外 : session 體驗評估 **
// ============================================================

// EstimatorSessionExp 彙總多個 session 報表。
//
// 1. RTP 敘事 : 描述 session 大致的 RTP 分布
//
// 2. Claim 敘事 : 描述鏈上驗證/本地回退的比例（含 CP 95% CI）
//
// 3. Bucket 敘事 : 描述 session 落入各贏倍區間的機率
func EstimatorSessionExp(sts []*StatReport) *EstimatorSessions {
	n := len(sts)
	out := &EstimatorSessions{}
	if n == 0 {
		return out
	}

	// ------------------------------------------------------------
	// 1) RTP 敘事：收集每個 session RTP 並做分位/CI
	// ------------------------------------------------------------
	rtp := make([]float64, n)
	for i, s := range sts {
		rtp[i] = s.Rtp()
	}

	medHat := quantilePoint(rtp, 0.5)
	medLo, medHi := quantileCI(rtp, 0.5, 0.95)

	p10Hat := quantilePoint(rtp, 0.10)
	p10Lo, p10Hi := quantileCI(rtp, 0.10, 0.95)

	p33Hat := quantilePoint(rtp, 1.0/3.0)
	p33Lo, p33Hi := quantileCI(rtp, 1.0/3.0, 0.95)

	p67Hat := quantilePoint(rtp, 2.0/3.0)
	p67Lo, p67Hi := quantileCI(rtp, 2.0/3.0, 0.95)

	p90Hat := quantilePoint(rtp, 0.90)
	p90Lo, p90Hi := quantileCI(rtp, 0.90, 0.95)

	rtp30Hat, rtp30CI := percentileCIForValue(rtp, 0.30, 0.95)
	rtp50Hat, rtp50CI := percentileCIForValue(rtp, 0.50, 0.95)
	rtp70Hat, rtp70CI := percentileCIForValue(rtp, 0.70, 0.95)
	rtp100Hat, rtp100CI := percentileCIForValue(rtp, 1.00, 0.95)

	out.RtpStat = RtpStat{
		ExpMedian: PointStat{Hat: medHat, CI: CI{Lo: medLo, Hi: medHi}},
		ExpPerc: ExpPerc{
			ExpP10: PointStat{Hat: p10Hat, CI: CI{Lo: p10Lo, Hi: p10Hi}},
			ExpP33: PointStat{Hat: p33Hat, CI: CI{Lo: p33Lo, Hi: p33Hi}},
			ExpP67: PointStat{Hat: p67Hat, CI: CI{Lo: p67Lo, Hi: p67Hi}},
			ExpP90: PointStat{Hat: p90Hat, CI: CI{Lo: p90Lo, Hi: p90Hi}},
		},
		RtpPerc: RtpPerc{
			Rtp30:  PointStat{Hat: rtp30Hat, CI: rtp30CI},
			Rtp50:  PointStat{Hat: rtp50Hat, CI: rtp50CI},
			Rtp70:  PointStat{Hat: rtp70Hat, CI: rtp70CI},
			Rtp100: PointStat{Hat: rtp100Hat, CI: rtp100CI},
		},
	}

	// ------------------------------------------------------------
	// 2) Claim 敘事：驗證/回退/中獎比例（以局為單位彙總）
	// ------------------------------------------------------------
	var rounds, verified, fallbacks, hits int
	for _, s := range sts {
		rounds += s.Summary.Rounds
		verified += s.Summary.Verified
		fallbacks += s.Summary.Fallbacks
		hits += s.Summary.Rounds - s.Summary.NoWinRounds
	}
	vHat, vCI := proportionCICP(verified, rounds, 0.95)
	fHat, fCI := proportionCICP(fallbacks, rounds, 0.95)
	hHat, hCI := proportionCICP(hits, rounds, 0.95)
	out.ClaimStat = ClaimStat{
		VerifiedRate: PointStat{Hat: vHat, CI: vCI},
		FallbackRate: PointStat{Hat: fHat, CI: fCI},
		HitRate:      PointStat{Hat: hHat, CI: hCI},
	}

	// ------------------------------------------------------------
	// 3) 分桶：每個 session 在各桶的落點次數（0/1/2/3+）
	// ------------------------------------------------------------
	labels := Buckets.WinBucketStr()
	L := len(labels)
	out.BucketStat = BucketStat{BucketLable: labels, BucketCount: make([]EventCount, L)}

	for bi := 0; bi < L; bi++ {
		var b0, b1, b2, b3p int
		for _, s := range sts {
			cnt := 0
			if bi < len(s.Dist.TotalWinCollect) {
				cnt = s.Dist.TotalWinCollect[bi]
			}
			switch {
			case cnt == 0:
				b0++
			case cnt == 1:
				b1++
			case cnt == 2:
				b2++
			default:
				b3p++
			}
		}
		_, ciB0 := proportionCICP(b0, n, 0.95)
		_, ciB1 := proportionCICP(b1, n, 0.95)
		_, ciB2 := proportionCICP(b2, n, 0.95)
		_, ciB3 := proportionCICP(b3p, n, 0.95)

		out.BucketStat.BucketCount[bi] = EventCount{
			Zero: PointStat{Hat: float64(b0) / float64(n), CI: ciB0},
			One:  PointStat{Hat: float64(b1) / float64(n), CI: ciB1},
			Two:  PointStat{Hat: float64(b2) / float64(n), CI: ciB2},
			More: PointStat{Hat: float64(b3p) / float64(n), CI: ciB3},
		}
	}

	return out
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// 問題：給定樣本 data 與門檻 x0，估計 p = P(X ≤ x0) 的點估計與 CI 區間
// 回傳 (pHat, CI)
func percentileCIForValue(data []float64, x0 float64, confidence float64) (pHat float64, ci CI) {
	n := len(data)
	if n == 0 {
		return 0, CI{Lo: 0, Hi: 0}
	}
	k := 0
	for _, v := range data {
		if v <= x0 {
			k++
		}
	}
	return proportionCICP(k, n, confidence)
}

// 想估「第 q 分位」的上下界。做法：把 order statistic 的秩視為二項→Beta 反推 p 範圍，再把 p 轉回樣本索引。
// 回傳 (loValue, hiValue)
func quantileCI(data []float64, q, confidence float64) (float64, float64) {
	n := len(data)
	if n == 0 {
		return 0, 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)

	alpha := 1 - confidence
	k := int(q * float64(n))
	if k < 1 {
		k = 1
	} else if k > n-1 {
		k = n - 1
	}

	bLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	bHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
	pLo := bLo.Quantile(alpha / 2)
	pHi := bHi.Quantile(1 - alpha/2)

	li := int(pLo * float64(n))
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui -= 1
	}
	if li < 0 {
		li = 0
	}
	if li > n-1 {
		li = n - 1
	}
	if ui < 0 {
		ui = 0
	}
	if ui > n-1 {
		ui = n - 1
	}
	return cp[li], cp[ui]
}

// quantilePoint returns the empirical quantile point estimate at q.
func quantilePoint(data []float64, q float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)
	// 最近秩法
	idx := int(q * float64(n))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return cp[idx]
}

// ============================================================
// ** 輸出函數 **
// ============================================================

func (est *EstimatorSessions) Out() {
	// 1) RTP (Session Experience)
	fmt.Println("=== RTP (Session Experience) ===")
	rtpKeys := []string{
		"Median RTP",
		"P10 RTP",
		"P33 RTP",
		"P67 RTP",
		"P90 RTP",
		"≤30% RTP (sessions)",
		"≤50% RTP (sessions)",
		"≤70% RTP (sessions)",
		"≤100% RTP (sessions)",
	}
	rtpMsg := map[string]string{
		"Median RTP":           fmtHatCIpct01(est.RtpStat.ExpMedian.Hat, est.RtpStat.ExpMedian.CI),
		"P10 RTP":              fmtHatCIpct01(est.RtpStat.ExpPerc.ExpP10.Hat, est.RtpStat.ExpPerc.ExpP10.CI),
		"P33 RTP":              fmtHatCIpct01(est.RtpStat.ExpPerc.ExpP33.Hat, est.RtpStat.ExpPerc.ExpP33.CI),
		"P67 RTP":              fmtHatCIpct01(est.RtpStat.ExpPerc.ExpP67.Hat, est.RtpStat.ExpPerc.ExpP67.CI),
		"P90 RTP":              fmtHatCIpct01(est.RtpStat.ExpPerc.ExpP90.Hat, est.RtpStat.ExpPerc.ExpP90.CI),
		"≤30% RTP (sessions)":  fmtHatCIpct01(est.RtpStat.RtpPerc.Rtp30.Hat, est.RtpStat.RtpPerc.Rtp30.CI),
		"≤50% RTP (sessions)":  fmtHatCIpct01(est.RtpStat.RtpPerc.Rtp50.Hat, est.RtpStat.RtpPerc.Rtp50.CI),
		"≤70% RTP (sessions)":  fmtHatCIpct01(est.RtpStat.RtpPerc.Rtp70.Hat, est.RtpStat.RtpPerc.Rtp70.CI),
		"≤100% RTP (sessions)": fmtHatCIpct01(est.RtpStat.RtpPerc.Rtp100.Hat, est.RtpStat.RtpPerc.Rtp100.CI),
	}
	printTable("RTP (Session Experience)", rtpKeys, rtpMsg)

	// 2) Claims
	fmt.Println("\n=== Claims ===")
	claimKeys := []string{"Verified", "Fallback", "Hit Rate"}
	claimMsg := map[string]string{
		"Verified": fmtHatCIpct01(est.ClaimStat.VerifiedRate.Hat, est.ClaimStat.VerifiedRate.CI),
		"Fallback": fmtHatCIpct01(est.ClaimStat.FallbackRate.Hat, est.ClaimStat.FallbackRate.CI),
		"Hit Rate": fmtHatCIpct01(est.ClaimStat.HitRate.Hat, est.ClaimStat.HitRate.CI),
	}
	printTable("Claims", claimKeys, claimMsg)

	// 3) Buckets (per session hits in bucket)
	fmt.Println("\n=== Buckets (per session hits in bucket) ===")
	for i, label := range est.BucketStat.BucketLable {
		ec := est.BucketStat.BucketCount[i]
		fmt.Printf("%-20s : %s\n", label, fmtEventCount(ec))
	}
}

func printTable(title string, keys []string, msg map[string]string) {
	fmt.Println(title)
	maxKeyLen := 0
	for _, k := range keys {
		if len(k) > maxKeyLen {
			maxKeyLen = len(k)
		}
	}
	for _, k := range keys {
		fmt.Printf("  %-*s : %s\n", maxKeyLen, k, msg[k])
	}
}

func fmtPct01(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func fmtHatCIpct01(hat float64, ci CI) string {
	return fmt.Sprintf("%s [%s, %s]", fmtPct01(hat), fmtPct01(ci.Lo), fmtPct01(ci.Hi))
}

func fmtEventCount(ec EventCount) string {
	return fmt.Sprintf("0x: %s | 1x: %s | 2x: %s | 3+x: %s",
		fmtHatCIpct01(ec.Zero.Hat, ec.Zero.CI),
		fmtHatCIpct01(ec.One.Hat, ec.One.CI),
		fmtHatCIpct01(ec.Two.Hat, ec.Two.CI),
		fmtHatCIpct01(ec.More.Hat, ec.More.CI),
	)
}
