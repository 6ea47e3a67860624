package stats

import (
	"sort"
	"sync"
	"time"
)

// LatencySummary 单个 RPC 方法的延迟分位汇总
type LatencySummary struct {
	Count uint64        `json:"count"` // 累计请求数（含被环形缓冲淘汰的样本）
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
	Max   time.Duration `json:"max"`
}

// methodRing 一个方法的样本环。满了之后覆盖最旧样本，
// 分位数因此反映最近 capacity 次请求；Count 和 Max 跨整个生命周期累计。
type methodRing struct {
	ns    []int64
	next  int
	full  bool
	count uint64
	maxNs int64
}

func (m *methodRing) push(ns int64) {
	m.ns[m.next] = ns
	m.next++
	if m.next == len(m.ns) {
		m.next = 0
		m.full = true
	}
	m.count++
	if ns > m.maxNs {
		m.maxNs = ns
	}
}

// window 当前有效样本数
func (m *methodRing) window() int {
	if m.full {
		return len(m.ns)
	}
	return m.next
}

// LatencyRecorder 按方法名记录请求延迟，供扫描结束时打印分位汇总。
// 容量固定，长会话下内存占用有界。
type LatencyRecorder struct {
	mu       sync.Mutex
	capacity int
	rings    map[string]*methodRing
}

func NewLatencyRecorder(capacity int) *LatencyRecorder {
	if capacity <= 0 {
		capacity = 2048
	}
	return &LatencyRecorder{
		capacity: capacity,
		rings:    make(map[string]*methodRing),
	}
}

// Record 记录一次请求耗时
func (r *LatencyRecorder) Record(method string, d time.Duration) {
	if r == nil || method == "" {
		return
	}
	ns := d.Nanoseconds()
	if ns < 0 {
		ns = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ring, ok := r.rings[method]
	if !ok {
		ring = &methodRing{ns: make([]int64, r.capacity)}
		r.rings[method] = ring
	}
	ring.push(ns)
}

// Snapshot 计算各方法的分位汇总；reset=true 时顺带清空样本与计数
func (r *LatencyRecorder) Snapshot(reset bool) map[string]LatencySummary {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]LatencySummary, len(r.rings))
	for method, ring := range r.rings {
		n := ring.window()
		if n > 0 {
			sorted := append([]int64(nil), ring.ns[:n]...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

			out[method] = LatencySummary{
				Count: ring.count,
				P50:   time.Duration(quantile(sorted, 0.50)),
				P95:   time.Duration(quantile(sorted, 0.95)),
				P99:   time.Duration(quantile(sorted, 0.99)),
				Max:   time.Duration(ring.maxNs),
			}
		}
		if reset {
			ring.next = 0
			ring.full = false
			ring.count = 0
			ring.maxNs = 0
		}
	}
	return out
}

// quantile 有序样本的 p 分位（下标取法：floor((n-1)*p)）
func quantile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	if idx < 0 {
		idx = 0
	}
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
