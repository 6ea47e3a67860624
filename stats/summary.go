package stats

// ScanSummary 一次查询结束后的计数汇总
type ScanSummary struct {
	RPCCalls     map[string]uint64 `json:"rpcCalls"`     // 方法名 -> 调用次数
	Fetched      uint64            `json:"fetched"`      // 拉回账户数
	Matched      uint64            `json:"matched"`      // 匹配账户数
	SkipShort    uint64            `json:"skipShort"`    // 数据过短跳过
	SkipMismatch uint64            `json:"skipMismatch"` // 判别码不符跳过
	SkipDecode   uint64            `json:"skipDecode"`   // 解码失败跳过
	CacheHits    uint64            `json:"cacheHits"`    // 快照缓存命中
	CacheMisses  uint64            `json:"cacheMisses"`  // 快照缓存未命中
}

// Summarize 汇总当前计数
func (h *Stats) Summarize() ScanSummary {
	scan := h.GetScanStats()
	return ScanSummary{
		RPCCalls:     h.GetAPICallStats(),
		Fetched:      scan[CounterFetched],
		Matched:      scan[CounterMatched],
		SkipShort:    scan[CounterSkipShort],
		SkipMismatch: scan[CounterSkipMismatch],
		SkipDecode:   scan[CounterSkipDecode],
		CacheHits:    scan[CounterCacheHit],
		CacheMisses:  scan[CounterCacheMiss],
	}
}

// Skipped 全部跳过数
func (s ScanSummary) Skipped() uint64 {
	return s.SkipShort + s.SkipMismatch + s.SkipDecode
}
