package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/chainspin/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 模擬統計報告
type StatReport struct {
	Summary *SummaryReport `json:"Summary"`
	Mult    *MultReport    `json:"Mult"`
	Dist    *DistReport    `json:"Dist"`
	isDone  bool
}

type SummaryReport struct {
	GameName     string   `json:"GameName"`
	GameId       spec.GID `json:"GameId"`
	StakePerLine uint64   `json:"StakePerLine"`
	LineCount    int      `json:"LineCount"`
	TotalStake   uint64   `json:"TotalStake"` // 單局總押注
	TotalBet     uint64   `json:"TotalBet"`
	TotalWin     uint64   `json:"TotalWin"`
	RTP          float64  `json:"RTP"`
	RtpCI        CI       `json:"RtpCI"`
	Std          float64  `json:"Std"`
	Cv           float64  `json:"Cv"`
	NoWinRounds  int      `json:"NoWinRounds"`
	HitRate      float64  `json:"HitRate"`
	Rounds       int      `json:"Rounds"`
	Verified     int      `json:"Verified"`  // 派彩經鏈上 claim 驗證的局數
	Fallbacks    int      `json:"Fallbacks"` // 回退本地回算（unverified）的局數
	Failed       int      `json:"Failed"`
	Expired      int      `json:"Expired"`
}

// MultReport 贏倍統計
//
// 紀錄時不轉型，避免熱路徑成本。紀錄完成後 Done() 會將結果整理填入。
// 贏倍 = 派彩 / 單局總押注。
type MultReport struct {
	TotalWinMult      float64 `json:"TotalWinMult"`
	TotalWinMultSqSum float64 `json:"TotalWinMultSqSum"` // 平方和
}

// DistReport 派彩區間落點統計
type DistReport struct {
	WinBucket       []string  `json:"WinBucket"`
	TotalWinCollect []int     `json:"TotalWinCollect"`
	TotalWinDist    []float64 `json:"TotalWinDist"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 所有紀錄過程因為性能原因只處理整數計數，統計完成後
// 請使用 Done 一次性計算衍生統計量。
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	s.Summary.RTP = s.Rtp()
	s.Summary.RtpCI = s.Ci()
	s.Summary.Std = s.Std()
	s.Summary.Cv = s.Cv()
	s.isDone = true
}

// Rtp 回傳整體 RTP（總派彩 / 總押注）
func (s *StatReport) Rtp() float64 {
	if s.Summary.Rounds == 0 || s.Summary.TotalBet == 0 {
		return 0
	}
	return float64(s.Summary.TotalWin) / float64(s.Summary.TotalBet)
}

// Std 回傳單局贏倍的標準差
func (s *StatReport) Std() float64 {
	if s.Summary.Rounds < 2 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)

	winMultPow := s.Mult.TotalWinMult * s.Mult.TotalWinMult
	variance := (s.Mult.TotalWinMultSqSum - winMultPow/rounds) / (rounds - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Cv 回傳單局贏倍的變異係數
func (s *StatReport) Cv() float64 {
	rtp := s.Rtp()
	std := s.Std()
	if rtp <= 0 {
		return 0
	}
	return std / rtp
}

// Ci 回傳(95% Rtp)信賴區間
func (s *StatReport) Ci() CI {
	rtp := s.Rtp()
	std := s.Std()
	rtpSe := float64(0)
	if s.Summary.Rounds > 1 {
		rtpSe = std / math.Sqrt(float64(s.Summary.Rounds))
	}
	return CI{
		Lo: max(rtp-1.96*rtpSe, 0.0),
		Hi: rtp + 1.96*rtpSe,
	}
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

func (s *StatReport) StdOut(ut time.Duration) {
	formatDuration(ut, s.Summary.Rounds)
	sk, sm := s.fmtBasic()
	str := fmtTable(s.Summary.GameName, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, spins int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(spins) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\nsps : %d spins/sec\n", sec, sps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		s = s % 60
		p.Printf("used: %dm %ds\nsps : %d spins/sec\n", m, s, sps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\nsps : %d spins/sec\n", h, m, s, sps)
}

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Game Name":      p.Sprintf("%s", s.Summary.GameName),
		"Game ID":        fmt.Sprintf("%d", s.Summary.GameId),
		"Stake Per Line": p.Sprintf("%d", s.Summary.StakePerLine),
		"Line Count":     p.Sprintf("%d", s.Summary.LineCount),
		"Total Rounds":   p.Sprintf("%d", s.Summary.Rounds),
		"Total RTP":      p.Sprintf("%.2f %%", 100.0*s.Summary.RTP),
		"RTP 95% CI":     p.Sprintf("[%.2f%%,%.2f%%]", 100.0*s.Summary.RtpCI.Lo, 100.0*s.Summary.RtpCI.Hi),
		"Total Bet":      p.Sprintf("%d", s.Summary.TotalBet),
		"Total Win":      p.Sprintf("%d", s.Summary.TotalWin),
		"NoWin Rounds":   p.Sprintf("%d", s.Summary.NoWinRounds),
		"Hit Rate":       p.Sprintf("%.2f %%", 100.0*s.Summary.HitRate),
		"Verified":       p.Sprintf("%d", s.Summary.Verified),
		"Fallbacks":      p.Sprintf("%d", s.Summary.Fallbacks),
		"STD":            p.Sprintf("%.3f", s.Summary.Std),
		"CV":             p.Sprintf("%.3f", s.Summary.Cv),
	}
	keys := []string{"Game Name", "Game ID", "Stake Per Line", "Line Count", "Total Rounds", "Total RTP", "RTP 95% CI", "Total Bet", "Total Win", "NoWin Rounds", "Hit Rate", "Verified", "Fallbacks", "STD", "CV"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
