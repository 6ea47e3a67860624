// query/match.go
package query

import (
	"sync"

	"github.com/RoaringBitmap/roaring"

	"solscan/types"
)

// verifyAccounts 对拉回的账户本地复核全部过滤器：
// 每个过滤器并发建一张命中位图，全部求交，按传输顺序产出下标。
// 数据过短的账户天然不会进任何位图（MemcmpFilter.Match 越界即不匹配）。
func verifyAccounts(accounts []types.ProgramAccount, filters []types.MemcmpFilter, workerCount int) []uint32 {
	if len(accounts) == 0 {
		return nil
	}
	if len(filters) == 0 {
		// 无过滤全量通过
		all := make([]uint32, len(accounts))
		for i := range accounts {
			all[i] = uint32(i)
		}
		return all
	}
	if workerCount <= 0 {
		workerCount = 1
	}

	bitmaps := make([]*roaring.Bitmap, len(filters))
	sem := make(chan struct{}, workerCount)
	var wg sync.WaitGroup

	for fi := range filters {
		wg.Add(1)
		sem <- struct{}{}
		go func(fi int, f types.MemcmpFilter) {
			defer wg.Done()
			defer func() { <-sem }()

			bm := roaring.New()
			for i := range accounts {
				if f.Match(accounts[i].Data) {
					bm.Add(uint32(i))
				}
			}
			bitmaps[fi] = bm
		}(fi, filters[fi])
	}
	wg.Wait()

	matched := roaring.FastAnd(bitmaps...)
	out := make([]uint32, 0, matched.GetCardinality())
	it := matched.Iterator()
	for it.HasNext() {
		out = append(out, it.Next())
	}
	return out
}
