package db

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"solscan/interfaces"
	"solscan/logs"
	"solscan/stats"
	"solscan/types"
)

// ErrNoSnapshot 离线模式下没有可用的缓存快照
var ErrNoSnapshot = errors.New("no cached snapshot for this query")

// CachingTransport 在任意 Transport 外面加一层快照缓存。
// 进程内热缓存（LRU）→ 磁盘快照（TTL 内）→ 底层传输层，逐级回退；
// 拉到的新结果反向写穿两层缓存。
type CachingTransport struct {
	inner   interfaces.Transport
	store   interfaces.AccountStore
	hot     *lru.Cache
	stats   *stats.Stats
	offline bool
}

// NewCachingTransport 包装 inner，读写都经过缓存
func NewCachingTransport(inner interfaces.Transport, store interfaces.AccountStore, st *stats.Stats, hotSize int) (*CachingTransport, error) {
	if st == nil {
		st = stats.NewStats()
	}
	if hotSize <= 0 {
		hotSize = 1
	}
	hot, err := lru.New(hotSize)
	if err != nil {
		return nil, fmt.Errorf("create hot cache: %w", err)
	}
	return &CachingTransport{inner: inner, store: store, hot: hot, stats: st}, nil
}

// NewOfflineTransport 只读缓存，未命中直接报 ErrNoSnapshot
func NewOfflineTransport(store interfaces.AccountStore, st *stats.Stats) (*CachingTransport, error) {
	t, err := NewCachingTransport(nil, store, st, 1)
	if err != nil {
		return nil, err
	}
	t.offline = true
	return t, nil
}

func (t *CachingTransport) FetchProgramAccounts(ctx context.Context, req *types.QueryRequest) ([]types.ProgramAccount, error) {
	fp := RequestFingerprint(req)

	if v, ok := t.hot.Get(fp); ok {
		t.stats.RecordScan(stats.CounterCacheHit, 1)
		return v.([]types.ProgramAccount), nil
	}

	accounts, ok, err := t.store.LoadSnapshot(req)
	if err != nil {
		// 磁盘故障不中断查询，降级为未命中
		logs.Warn("[Cache] load snapshot %s failed, falling back to transport: %v", fp, err)
		ok = false
	}
	if ok {
		t.stats.RecordScan(stats.CounterCacheHit, 1)
		t.hot.Add(fp, accounts)
		return accounts, nil
	}
	t.stats.RecordScan(stats.CounterCacheMiss, 1)

	if t.offline {
		return nil, fmt.Errorf("%w (fingerprint %s)", ErrNoSnapshot, fp)
	}

	accounts, err = t.inner.FetchProgramAccounts(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := t.store.SaveSnapshot(req, accounts); err != nil {
		// 保存失败只告警，本次结果照常返回
		logs.Warn("[Cache] save snapshot %s failed: %v", fp, err)
	}
	t.hot.Add(fp, accounts)
	return accounts, nil
}

// SupportsFilters 缓存命中时结果本来就按同一组过滤器拉取，
// 语义上等价于下推；在线时如实转发底层能力。
func (t *CachingTransport) SupportsFilters() bool {
	if t.inner == nil {
		return true
	}
	return t.inner.SupportsFilters()
}

// Close 关闭底层缓存库
func (t *CachingTransport) Close() {
	t.store.Close()
}
