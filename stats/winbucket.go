package stats

// WinBuckets
//
// 用來快速定位派彩 -> 分布統計位置
//
// 請勿修改預設值
//   - win區間: 贏倍區間（相對單局總押注） [0,0], (0,1), [1,2), [2,5), ..., [2000,10000), [10000, +inf)
//
// 押注是最小單位整數（動輒百萬起跳），不適合建 LUT 反查表；
// 區間只有十餘個，線性掃描就夠快。
type WinBuckets struct {
	multBounds []uint64
	labels     []string
	bucketMap  map[uint64]*WinBucket
}

type WinBucket struct {
	totalStake uint64
	bounds     []uint64 // bounds[i] = totalStake × multBounds[i]
	maxIdx     int
}

var Buckets *WinBuckets = &WinBuckets{
	multBounds: []uint64{0, 1, 2, 5, 10, 20, 50, 100, 300, 500, 1000, 2000, 10000},
	labels:     []string{"[0,0]", "(0,1)", "[1,2)", "[2,5)", "[5,10)", "[10,20)", "[20,50)", "[50,100)", "[100,300)", "[300,500)", "[500,1000)", "[1000,2000)", "[2000,10000)", "[10000,+inf)"},
	bucketMap:  make(map[uint64]*WinBucket),
}

func (b *WinBuckets) WinBucketStr() []string {
	return b.labels
}

// GetBucketByStake 取得（或建立）對應單局總押注的分桶。
// 建桶不是熱路徑；併發模擬前請先順序建好所有 recorder。
func (b *WinBuckets) GetBucketByStake(totalStake uint64) *WinBucket {
	result, exist := b.bucketMap[totalStake]
	if !exist {
		result = b.buildBucket(totalStake)
	}
	return result
}

func (b *WinBuckets) buildBucket(totalStake uint64) *WinBucket {
	bounds := make([]uint64, len(b.multBounds))
	for i, m := range b.multBounds {
		bounds[i] = totalStake * m
	}
	result := &WinBucket{
		totalStake: totalStake,
		bounds:     bounds,
		maxIdx:     len(bounds),
	}
	b.bucketMap[totalStake] = result
	return result
}

// Index 回傳派彩落在哪個分桶。
func (wb *WinBucket) Index(win uint64) int {
	if win == 0 {
		return 0
	}
	for i := 1; i < len(wb.bounds); i++ {
		if win < wb.bounds[i] {
			return i
		}
	}
	return wb.maxIdx
}
