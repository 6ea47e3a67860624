package stats

import (
	"sync"
)

// 扫描计数器名
const (
	CounterFetched      = "accounts_fetched"    // 传输层拉回的账户数
	CounterMatched      = "accounts_matched"    // 通过本地复核的账户数
	CounterSkipShort    = "skip_short_data"     // 数据过短被跳过
	CounterSkipMismatch = "skip_type_mismatch"  // 判别码不符被跳过
	CounterSkipDecode   = "skip_decode_failed"  // 字段提取失败被跳过
	CounterCacheHit     = "snapshot_cache_hit"  // 快照缓存命中
	CounterCacheMiss    = "snapshot_cache_miss" // 快照缓存未命中
)

type Stats struct {
	statsLock     sync.RWMutex
	apiCallCounts map[string]uint64
	scanCounts    map[string]uint64
}

func NewStats() *Stats {
	return &Stats{
		apiCallCounts: make(map[string]uint64),
		scanCounts:    make(map[string]uint64),
	}
}

// 记录API调用
func (h *Stats) RecordAPICall(apiName string) {
	h.statsLock.Lock()
	defer h.statsLock.Unlock()

	if h.apiCallCounts == nil {
		h.apiCallCounts = make(map[string]uint64)
	}
	h.apiCallCounts[apiName]++
}

// 获取API调用统计
func (h *Stats) GetAPICallStats() map[string]uint64 {
	h.statsLock.RLock()
	defer h.statsLock.RUnlock()

	// 复制统计数据
	stats := make(map[string]uint64)
	for api, count := range h.apiCallCounts {
		stats[api] = count
	}
	return stats
}

// 记录扫描计数（拉取/匹配/各类跳过）
func (h *Stats) RecordScan(counter string, n uint64) {
	h.statsLock.Lock()
	defer h.statsLock.Unlock()

	if h.scanCounts == nil {
		h.scanCounts = make(map[string]uint64)
	}
	h.scanCounts[counter] += n
}

// 获取扫描统计
func (h *Stats) GetScanStats() map[string]uint64 {
	h.statsLock.RLock()
	defer h.statsLock.RUnlock()

	stats := make(map[string]uint64)
	for c, count := range h.scanCounts {
		stats[c] = count
	}
	return stats
}

// 单个计数器读取
func (h *Stats) ScanCount(counter string) uint64 {
	h.statsLock.RLock()
	defer h.statsLock.RUnlock()
	return h.scanCounts[counter]
}
