package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/chainspin/spec"
)

func TestWinBucketIndex(t *testing.T) {
	const stake = 1_000_000
	wb := Buckets.GetBucketByStake(stake)

	cases := []struct {
		win  uint64
		want int
	}{
		{0, 0},
		{1, 1},
		{stake - 1, 1},
		{stake, 2},          // [1,2)
		{2*stake - 1, 2},    // [1,2)
		{2 * stake, 3},      // [2,5)
		{5 * stake, 4},      // [5,10)
		{9999 * stake, 12},  // [2000,10000)
		{10000 * stake, 13}, // [10000,+inf)
		{math.MaxUint64 / 2, 13},
	}
	for _, c := range cases {
		if got := wb.Index(c.win); got != c.want {
			t.Fatalf("Index(%d) = %d, want %d", c.win, got, c.want)
		}
	}

	if len(Buckets.WinBucketStr()) != 14 {
		t.Fatalf("bucket labels %d, want 14", len(Buckets.WinBucketStr()))
	}
}

func TestWinBucketCached(t *testing.T) {
	a := Buckets.GetBucketByStake(777)
	b := Buckets.GetBucketByStake(777)
	if a != b {
		t.Fatal("same stake should reuse the same bucket")
	}
}

func newReport(rounds int, totalBet, totalWin uint64) *StatReport {
	labels := Buckets.WinBucketStr()
	return &StatReport{
		Summary: &SummaryReport{
			GameName:   "stats_test",
			GameId:     spec.GID(1),
			TotalStake: 1000,
			TotalBet:   totalBet,
			TotalWin:   totalWin,
			Rounds:     rounds,
		},
		Mult: &MultReport{},
		Dist: &DistReport{
			WinBucket:       labels,
			TotalWinCollect: make([]int, len(labels)),
		},
	}
}

func TestStatReportRtp(t *testing.T) {
	s := newReport(100, 100_000, 95_000)
	if got := s.Rtp(); got != 0.95 {
		t.Fatalf("rtp %f, want 0.95", got)
	}

	empty := newReport(0, 0, 0)
	if got := empty.Rtp(); got != 0 {
		t.Fatalf("empty rtp %f, want 0", got)
	}
}

func TestStatReportStd(t *testing.T) {
	// 兩局：贏倍 0 與 2 → 樣本標準差 sqrt(2)
	s := newReport(2, 2000, 2000)
	s.Mult.TotalWinMult = 2.0
	s.Mult.TotalWinMultSqSum = 4.0

	want := math.Sqrt2
	if got := s.Std(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("std %f, want %f", got, want)
	}

	s.Done()
	if s.Summary.Std != want {
		t.Fatalf("done std %f, want %f", s.Summary.Std, want)
	}
	if s.Summary.RtpCI.Lo > s.Summary.RTP || s.Summary.RtpCI.Hi < s.Summary.RTP {
		t.Fatalf("rtp %f outside CI [%f,%f]", s.Summary.RTP, s.Summary.RtpCI.Lo, s.Summary.RtpCI.Hi)
	}
}

func TestRenderJSONAndYAML(t *testing.T) {
	s := newReport(10, 10_000, 9_000)

	var jb bytes.Buffer
	if err := s.WriteWith(&jb, &JsonStatReportRender{}); err != nil {
		t.Fatalf("json render: %v", err)
	}
	if !strings.Contains(jb.String(), `"GameName":"stats_test"`) {
		t.Fatalf("json output missing game name: %s", jb.String())
	}

	var yb bytes.Buffer
	if err := s.WriteWith(&yb, &YAMLStatReportRender{}); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	// 一維陣列應該被壓成 flow style
	if !strings.Contains(yb.String(), "[") {
		t.Fatalf("yaml output missing flow sequences: %s", yb.String())
	}
}

func TestEstimatorSessionExp(t *testing.T) {
	// 20 個 session：一半 RTP 0.8、一半 RTP 1.2
	sts := make([]*StatReport, 20)
	for i := range sts {
		win := uint64(80_000)
		if i%2 == 1 {
			win = 120_000
		}
		s := newReport(100, 100_000, win)
		s.Summary.Verified = 90
		s.Summary.Fallbacks = 10
		s.Summary.NoWinRounds = 70
		sts[i] = s
	}

	est := EstimatorSessionExp(sts)

	med := est.RtpStat.ExpMedian.Hat
	if med < 0.8 || med > 1.2 {
		t.Fatalf("median rtp %f outside sample range", med)
	}
	// 全部 session 都 ≤ 100% 不成立（一半是1.2）；≤30% 應為 0
	if est.RtpStat.RtpPerc.Rtp30.Hat != 0 {
		t.Fatalf("rtp<=30%% proportion %f, want 0", est.RtpStat.RtpPerc.Rtp30.Hat)
	}

	v := est.ClaimStat.VerifiedRate
	if math.Abs(v.Hat-0.9) > 1e-9 {
		t.Fatalf("verified rate %f, want 0.9", v.Hat)
	}
	if v.CI.Lo >= v.Hat || v.CI.Hi <= v.Hat {
		t.Fatalf("verified CI [%f,%f] does not bracket %f", v.CI.Lo, v.CI.Hi, v.Hat)
	}

	h := est.ClaimStat.HitRate
	if math.Abs(h.Hat-0.3) > 1e-9 {
		t.Fatalf("hit rate %f, want 0.3", h.Hat)
	}

	if len(est.BucketStat.BucketCount) != len(Buckets.WinBucketStr()) {
		t.Fatalf("bucket stat length %d", len(est.BucketStat.BucketCount))
	}
}

func TestEstimatorEmptyInput(t *testing.T) {
	est := EstimatorSessionExp(nil)
	if est == nil {
		t.Fatal("estimator should return zero value, not nil")
	}
}
