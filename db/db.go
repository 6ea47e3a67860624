package db

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/badger/v2/options"

	"solscan/config"
	"solscan/logs"
	"solscan/stats"
)

// Manager 封装 BadgerDB 的快照缓存管理器
type Manager struct {
	Db *badger.DB
	mu sync.RWMutex

	// 队列通道，批量写的 goroutine 用它来取写请求
	writeQueueChan chan WriteTask
	// 强制刷盘通道
	forceFlushChan chan flushRequest
	// 用于通知写队列 goroutine 停止
	stopChan chan struct{}
	// 写队列运行统计（用于观测吞吐与背压）
	writeQueueEnqueueTotal        uint64
	writeQueueEnqueueSetTotal     uint64
	writeQueueEnqueueDeleteTotal  uint64
	writeQueueEnqueueBlockedCount uint64
	writeQueueEnqueueBlockedNs    uint64
	writeQueueDequeuedTotal       uint64
	writeQueueFlushBatchTotal     uint64
	writeQueueFlushedTaskTotal    uint64
	writeQueueFlushErrTotal       uint64
	writeQueueForceFlushTotal     uint64
	writeQueueMaxDepth            uint64

	// 控制"写多少/多长时间"就落库
	maxBatchSize  int           // 累计多少条就写一次
	flushInterval time.Duration // 间隔多久强制写一次

	wg     sync.WaitGroup
	Logger logs.Logger
	cfg    *config.Config
}

type flushRequest struct {
	done chan error
}

type writeQueueMetricsSnapshot struct {
	enqueueTotal        uint64
	enqueueSetTotal     uint64
	enqueueDeleteTotal  uint64
	enqueueBlockedCount uint64
	enqueueBlockedNs    uint64
	dequeuedTotal       uint64
	flushBatchTotal     uint64
	flushedTaskTotal    uint64
	flushErrTotal       uint64
	forceFlushTotal     uint64
	maxDepth            uint64
}

// NewManager 创建一个新的缓存 Manager 实例
func NewManager(path string, logger logs.Logger) (*Manager, error) {
	return NewManagerWithConfig(path, logger, nil)
}

// NewManagerWithConfig 创建缓存 Manager，可选注入整份 Config
func NewManagerWithConfig(path string, logger logs.Logger, cfg *config.Config) (*Manager, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logs.Default()
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	// 应用调优参数
	opts.ValueLogFileSize = cfg.Cache.ValueLogFileSize
	// CLI 进程生命周期短，关掉后台压缩线程
	opts.NumCompactors = 0
	// 使用 FileIO 模式减少 mmap 内存占用
	opts.TableLoadingMode = options.FileIO
	opts.ValueLogLoadingMode = options.FileIO

	// badger v2 不自动创建父目录，需要手动创建
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	manager := &Manager{
		Db:     bdb,
		Logger: logger,
		cfg:    cfg,
	}
	return manager, nil
}

// NewReadOnlyManager 创建一个只读的缓存 Manager 实例
// 用于检查工具直接读正在使用的缓存库，不需要写队列
// 注意：Windows 不支持 BadgerDB 的 ReadOnly 模式，所以用 BypassLockGuard 代替
// 检查工具不初始化写队列，因此不会写入任何数据
func NewReadOnlyManager(path string, logger logs.Logger, cfg *config.Config) (*Manager, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logs.Default()
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	// Windows 不支持 ReadOnly，使用 BypassLockGuard 允许多进程打开同一数据库
	opts.BypassLockGuard = true
	opts.NumCompactors = 0 // 不做压缩
	opts.TableLoadingMode = options.FileIO
	opts.ValueLogLoadingMode = options.FileIO

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db read-only: %w", err)
	}

	return &Manager{
		Db:     bdb,
		Logger: logger,
		cfg:    cfg,
		// writeQueueChan = nil, 不初始化写队列
	}, nil
}

// InitWriteQueue 启动批量写 goroutine
func (manager *Manager) InitWriteQueue(maxBatchSize int, flushInterval time.Duration) {
	cfg := manager.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	manager.maxBatchSize = maxBatchSize
	manager.flushInterval = flushInterval
	manager.resetWriteQueueMetrics()
	manager.writeQueueChan = make(chan WriteTask, cfg.Cache.WriteQueueSize)
	manager.forceFlushChan = make(chan flushRequest, 1)
	manager.stopChan = make(chan struct{})

	manager.wg.Add(1)
	go manager.runWriteQueue()
}

func (manager *Manager) resetWriteQueueMetrics() {
	manager.writeQueueEnqueueTotal = 0
	manager.writeQueueEnqueueSetTotal = 0
	manager.writeQueueEnqueueDeleteTotal = 0
	manager.writeQueueEnqueueBlockedCount = 0
	manager.writeQueueEnqueueBlockedNs = 0
	manager.writeQueueDequeuedTotal = 0
	manager.writeQueueFlushBatchTotal = 0
	manager.writeQueueFlushedTaskTotal = 0
	manager.writeQueueFlushErrTotal = 0
	manager.writeQueueForceFlushTotal = 0
	manager.writeQueueMaxDepth = 0
}

func (manager *Manager) observeQueueDepth() {
	q := len(manager.writeQueueChan)
	for {
		old := atomic.LoadUint64(&manager.writeQueueMaxDepth)
		if uint64(q) <= old {
			return
		}
		if atomic.CompareAndSwapUint64(&manager.writeQueueMaxDepth, old, uint64(q)) {
			return
		}
	}
}

func (manager *Manager) snapshotWriteQueueMetrics() writeQueueMetricsSnapshot {
	return writeQueueMetricsSnapshot{
		enqueueTotal:        atomic.LoadUint64(&manager.writeQueueEnqueueTotal),
		enqueueSetTotal:     atomic.LoadUint64(&manager.writeQueueEnqueueSetTotal),
		enqueueDeleteTotal:  atomic.LoadUint64(&manager.writeQueueEnqueueDeleteTotal),
		enqueueBlockedCount: atomic.LoadUint64(&manager.writeQueueEnqueueBlockedCount),
		enqueueBlockedNs:    atomic.LoadUint64(&manager.writeQueueEnqueueBlockedNs),
		dequeuedTotal:       atomic.LoadUint64(&manager.writeQueueDequeuedTotal),
		flushBatchTotal:     atomic.LoadUint64(&manager.writeQueueFlushBatchTotal),
		flushedTaskTotal:    atomic.LoadUint64(&manager.writeQueueFlushedTaskTotal),
		flushErrTotal:       atomic.LoadUint64(&manager.writeQueueFlushErrTotal),
		forceFlushTotal:     atomic.LoadUint64(&manager.writeQueueForceFlushTotal),
		maxDepth:            atomic.LoadUint64(&manager.writeQueueMaxDepth),
	}
}

func (manager *Manager) logWriteQueueStats(prev writeQueueMetricsSnapshot, interval time.Duration) writeQueueMetricsSnapshot {
	cur := manager.snapshotWriteQueueMetrics()
	seconds := interval.Seconds()
	if seconds <= 0 {
		seconds = 1
	}

	enqDelta := cur.enqueueTotal - prev.enqueueTotal
	setDelta := cur.enqueueSetTotal - prev.enqueueSetTotal
	delDelta := cur.enqueueDeleteTotal - prev.enqueueDeleteTotal
	deqDelta := cur.dequeuedTotal - prev.dequeuedTotal
	flushBatchDelta := cur.flushBatchTotal - prev.flushBatchTotal
	flushedTaskDelta := cur.flushedTaskTotal - prev.flushedTaskTotal
	flushErrDelta := cur.flushErrTotal - prev.flushErrTotal
	forceFlushDelta := cur.forceFlushTotal - prev.forceFlushTotal
	blockedDelta := cur.enqueueBlockedCount - prev.enqueueBlockedCount
	blockedNsDelta := cur.enqueueBlockedNs - prev.enqueueBlockedNs

	avgBatch := 0.0
	if flushBatchDelta > 0 {
		avgBatch = float64(flushedTaskDelta) / float64(flushBatchDelta)
	}
	avgBlockMs := 0.0
	if blockedDelta > 0 {
		avgBlockMs = float64(blockedNsDelta) / float64(blockedDelta) / float64(time.Millisecond)
	}

	gauge, _ := manager.WriteQueueGauge()
	msg := fmt.Sprintf(
		"[CacheQueue] 10s stats q=%d/%d(%.0f%%) max=%d enq=%d(%.1f/s,set=%d,del=%d) deq=%d(%.1f/s) flushTasks=%d batches=%d avgBatch=%.1f flushErr=%d forceFlush=%d blocked=%d avgBlock=%.2fms",
		gauge.Len, gauge.Cap, gauge.Usage()*100, cur.maxDepth,
		enqDelta, float64(enqDelta)/seconds, setDelta, delDelta,
		deqDelta, float64(deqDelta)/seconds,
		flushedTaskDelta, flushBatchDelta, avgBatch,
		flushErrDelta, forceFlushDelta, blockedDelta, avgBlockMs,
	)
	if manager.Logger != nil {
		manager.Logger.Info(msg)
	} else {
		logs.Info("%s", msg)
	}

	return cur
}

// 写队列的核心 goroutine 逻辑
func (manager *Manager) runWriteQueue() {
	defer manager.wg.Done()

	var batch []WriteTask
	batch = make([]WriteTask, 0, manager.maxBatchSize)

	// 定时器：到了 flushInterval 就要提交
	ticker := time.NewTicker(manager.flushInterval)
	defer ticker.Stop()
	metricsTicker := time.NewTicker(10 * time.Second)
	defer metricsTicker.Stop()
	lastMetricsAt := time.Now()
	metricsPrev := manager.snapshotWriteQueueMetrics()

	flushCurrentBatch := func() error {
		if len(batch) == 0 {
			return nil
		}
		count := len(batch)
		err := manager.flushBatch(batch)
		atomic.AddUint64(&manager.writeQueueFlushBatchTotal, 1)
		atomic.AddUint64(&manager.writeQueueFlushedTaskTotal, uint64(count))
		if err != nil {
			atomic.AddUint64(&manager.writeQueueFlushErrTotal, 1)
		}
		batch = batch[:0]
		return err
	}

	for {
		select {
		case <-manager.stopChan:
			// 退出前先排空队列，再刷掉最后一批
			batch = manager.drainWriteQueue(batch)
			err := flushCurrentBatch()
			manager.resolvePendingForceFlush(err)
			return

		case task := <-manager.writeQueueChan:
			atomic.AddUint64(&manager.writeQueueDequeuedTotal, 1)
			batch = append(batch, task)
			if len(batch) >= manager.maxBatchSize {
				// 超过阈值，立即 flush
				if err := flushCurrentBatch(); err != nil {
					logs.Error("[runWriteQueue] flush by size failed: %v", err)
				}
			}

		case <-ticker.C:
			// 定时触发时先排空当前队列积压，避免频繁小批次 flush
			batch = manager.drainWriteQueue(batch)
			if err := flushCurrentBatch(); err != nil {
				logs.Error("[runWriteQueue] flush by ticker failed: %v", err)
			}

		case <-metricsTicker.C:
			metricsPrev = manager.logWriteQueueStats(metricsPrev, time.Since(lastMetricsAt))
			lastMetricsAt = time.Now()

		case req := <-manager.forceFlushChan:
			// 同步 flush：排空已入队写请求并等待落盘完成
			atomic.AddUint64(&manager.writeQueueForceFlushTotal, 1)
			batch = manager.drainWriteQueue(batch)
			err := flushCurrentBatch()
			manager.finishForceFlush(req, err)

			// 依次处理已排队的其他 force flush 请求，保持强一致语义
			for {
				select {
				case req = <-manager.forceFlushChan:
					atomic.AddUint64(&manager.writeQueueForceFlushTotal, 1)
					batch = manager.drainWriteQueue(batch)
					err = flushCurrentBatch()
					manager.finishForceFlush(req, err)
				default:
					goto doneForceFlush
				}
			}
		doneForceFlush:
		}
	}
}

// ForceFlush triggers a batch queue flush
func (manager *Manager) ForceFlush() error {
	if manager.forceFlushChan == nil {
		return nil
	}

	req := flushRequest{done: make(chan error, 1)}

	if manager.stopChan != nil {
		select {
		case manager.forceFlushChan <- req:
		case <-manager.stopChan:
			return fmt.Errorf("write queue already stopped")
		}
	} else {
		manager.forceFlushChan <- req
	}

	if manager.stopChan != nil {
		select {
		case err := <-req.done:
			return err
		case <-manager.stopChan:
			select {
			case err := <-req.done:
				return err
			default:
			}
			return fmt.Errorf("write queue stopped before flush completed")
		}
	}

	return <-req.done
}

func (manager *Manager) drainWriteQueue(batch []WriteTask) []WriteTask {
	for {
		select {
		case task := <-manager.writeQueueChan:
			atomic.AddUint64(&manager.writeQueueDequeuedTotal, 1)
			batch = append(batch, task)
		default:
			return batch
		}
	}
}

func (manager *Manager) finishForceFlush(req flushRequest, err error) {
	req.done <- err
	close(req.done)
}

func (manager *Manager) resolvePendingForceFlush(err error) {
	for {
		select {
		case req := <-manager.forceFlushChan:
			manager.finishForceFlush(req, err)
		default:
			return
		}
	}
}

// 这里 flushBatch 会把 batch 分段后提交到 BadgerDB。
func (manager *Manager) flushBatch(batch []WriteTask) error {
	if len(batch) == 0 {
		return nil
	}
	cfg := manager.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	// 保守软上限，留出 Badger 元数据开销余量
	softLimitBytes := cfg.Cache.WriteBatchSoftLimit // 8 MiB
	maxCountPerTxn := cfg.Cache.MaxCountPerTxn      // 也保留条数上限，双重保险
	perEntryOverhead := cfg.Cache.PerEntryOverhead  // 估算每条附加开销

	// 1) 先按"字节+条数"把 batch 切成若干 sub-batch
	type sliceRange struct{ i, j int }
	subRanges := make([]sliceRange, 0, (len(batch)+maxCountPerTxn-1)/maxCountPerTxn)

	curStart, curBytes, curCount := 0, 0, 0
	for idx, t := range batch {
		entryBytes := len(t.Key) + len(t.Value) + perEntryOverhead
		// 如果加上当前条会超过限制，就先封口开新段
		if curCount > 0 && (int64(curBytes+entryBytes) > softLimitBytes || curCount >= maxCountPerTxn) {
			subRanges = append(subRanges, sliceRange{curStart, idx})
			curStart, curBytes, curCount = idx, 0, 0
		}
		curBytes += entryBytes
		curCount++
	}
	// 收尾
	if curStart < len(batch) {
		subRanges = append(subRanges, sliceRange{curStart, len(batch)})
	}

	var firstErr error

	// 2) 提交每个 sub-batch；若仍报过大，二分退让
	for _, r := range subRanges {
		if err := manager.flushRangeWithSplit(batch, r.i, r.j); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (manager *Manager) flushRangeWithSplit(batch []WriteTask, start, end int) error {
	type sliceRange struct{ i, j int }

	stack := []sliceRange{{i: start, j: end}}
	var firstErr error

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.i >= cur.j {
			continue
		}

		ok, err := manager.tryFlushRange(batch, cur.i, cur.j)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if ok {
			continue
		}

		if cur.j-cur.i <= 1 {
			continue
		}

		mid := cur.i + (cur.j-cur.i)/2
		stack = append(stack, sliceRange{i: mid, j: cur.j}, sliceRange{i: cur.i, j: mid})
	}

	return firstErr
}

// 返回是否提交成功；若返回 false，调用方应继续拆分范围重试。
func (manager *Manager) tryFlushRange(batch []WriteTask, start, end int) (bool, error) {
	if start >= end {
		return true, nil
	}
	sub := batch[start:end]

	wb := manager.Db.NewWriteBatch()
	defer wb.Cancel()

	for _, task := range sub {
		var err error
		switch task.Op {
		case OpSet:
			err = wb.Set(task.Key, task.Value)
		case OpDelete:
			err = wb.Delete(task.Key)
		}
		if err != nil {
			// ErrTxnTooBig 时交给外层继续切分
			if errors.Is(err, badger.ErrTxnTooBig) || strings.Contains(err.Error(), "Txn is too big") {
				if end-start == 1 {
					key := string(sub[0].Key)
					valSz := len(sub[0].Value)
					msg := fmt.Errorf("single entry too big for badger: key=%q size=%d bytes", key, valSz)
					manager.Logger.Error("[flushBatch] %v; consider compressing, chunking, or storing out-of-DB", msg)
					return true, msg
				}
				return false, nil
			}
			logs.Error("[flushBatch] subBatch [%d:%d] set/delete error: %v", start, end, err)
			return true, err
		}
	}

	err := wb.Flush()
	if err == nil {
		return true, nil
	}

	// Badger 的典型报错文案里包含 "Txn is too big"
	if errors.Is(err, badger.ErrTxnTooBig) || strings.Contains(err.Error(), "Txn is too big") {
		if end-start == 1 {
			// 单条仍过大：给出清晰提示
			key := string(sub[0].Key)
			valSz := len(sub[0].Value)
			msg := fmt.Errorf("single entry still too big: key=%q size=%d bytes", key, valSz)
			manager.Logger.Error("[flushBatch] %v; consider compressing, chunking, or storing out-of-DB", msg)
			return true, msg
		}
		// 交给上层继续二分
		return false, nil
	}

	// 其他错误：记录并继续
	logs.Error("[flushBatch] subBatch [%d:%d] error: %v", start, end, err)
	return true, err // 避免卡死：把它当"已处理"，不中断后续
}

// 提供"投递写请求"的方法

func (manager *Manager) EnqueueSet(key string, value []byte) {
	start := time.Now()
	manager.writeQueueChan <- WriteTask{
		Key:   []byte(key),
		Value: value,
		Op:    OpSet,
	}
	atomic.AddUint64(&manager.writeQueueEnqueueTotal, 1)
	atomic.AddUint64(&manager.writeQueueEnqueueSetTotal, 1)
	blocked := time.Since(start)
	if blocked > 100*time.Microsecond {
		atomic.AddUint64(&manager.writeQueueEnqueueBlockedCount, 1)
		atomic.AddUint64(&manager.writeQueueEnqueueBlockedNs, uint64(blocked))
	}
	manager.observeQueueDepth()
}

func (manager *Manager) EnqueueDelete(key string) {
	start := time.Now()
	manager.writeQueueChan <- WriteTask{
		Key: []byte(key),
		Op:  OpDelete,
	}
	atomic.AddUint64(&manager.writeQueueEnqueueTotal, 1)
	atomic.AddUint64(&manager.writeQueueEnqueueDeleteTotal, 1)
	blocked := time.Since(start)
	if blocked > 100*time.Microsecond {
		atomic.AddUint64(&manager.writeQueueEnqueueBlockedCount, 1)
		atomic.AddUint64(&manager.writeQueueEnqueueBlockedNs, uint64(blocked))
	}
	manager.observeQueueDepth()
}

// Get 读取键对应的值
func (manager *Manager) Get(key string) ([]byte, error) {
	manager.mu.RLock()
	bdb := manager.Db
	manager.mu.RUnlock()

	if bdb == nil {
		return nil, fmt.Errorf("cache db is not initialized or closed")
	}

	var value []byte
	err := bdb.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		value = val
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// GetKVs 批量读取，缺失的键直接跳过
func (manager *Manager) GetKVs(queryKeys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(queryKeys))
	if len(queryKeys) == 0 {
		return result, nil
	}

	manager.mu.RLock()
	bdb := manager.Db
	manager.mu.RUnlock()

	if bdb == nil {
		return nil, fmt.Errorf("cache db is not initialized or closed")
	}

	err := bdb.View(func(txn *badger.Txn) error {
		for _, key := range queryKeys {
			if key == "" {
				continue
			}
			item, err := txn.Get([]byte(key))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[key] = val
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ScanKVWithLimit 扫描指定前缀的所有键值对，最多返回 limit 条记录
func (manager *Manager) ScanKVWithLimit(prefix string, limit int) (map[string][]byte, error) {
	result := make(map[string][]byte)

	manager.mu.RLock()
	bdb := manager.Db
	manager.mu.RUnlock()

	if bdb == nil {
		return nil, fmt.Errorf("cache db is not initialized or closed")
	}

	err := bdb.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		count := 0
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if limit > 0 && count >= limit {
				break
			}
			item := it.Item()
			k := item.KeyCopy(nil)
			v, err := item.ValueCopy(nil)
			if err != nil {
				continue
			}
			result[string(k)] = v
			count++
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// ScanKeysWithLimit 只扫描键（值不拷贝），用于统计与清理
func (manager *Manager) ScanKeysWithLimit(prefix string, limit int) ([]string, error) {
	var result []string

	manager.mu.RLock()
	bdb := manager.Db
	manager.mu.RUnlock()

	if bdb == nil {
		return nil, fmt.Errorf("cache db is not initialized or closed")
	}

	err := bdb.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		count := 0
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if limit > 0 && count >= limit {
				break
			}
			result = append(result, string(it.Item().KeyCopy(nil)))
			count++
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (manager *Manager) Close() {
	// 1. 先做一次同步 flush，确保已经入队的写请求全部落盘
	if err := manager.ForceFlush(); err != nil {
		logs.Error("[db.Close] force flush failed: %v", err)
	}

	// 2. 通知写队列 goroutine 停止
	if manager.stopChan != nil {
		select {
		case <-manager.stopChan:
			// already closed
		default:
			close(manager.stopChan)
		}
	}

	// 3. 等待 goroutine 退出
	manager.wg.Wait()
	manager.stopChan = nil
	manager.forceFlushChan = nil

	// 4. 这时所有队列里的数据都已经 flush 完了，可以安全关闭 DB
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if manager.Db != nil {
		_ = manager.Db.Close()
		manager.Db = nil
	}
}

// WriteQueueGauge 返回写队列的瞬时水位；未初始化写队列时 ok=false
func (m *Manager) WriteQueueGauge() (stats.QueueGauge, bool) {
	if m.writeQueueChan == nil {
		return stats.QueueGauge{}, false
	}
	return stats.QueueGauge{
		Name:   "writeQueueChan",
		Module: "Cache",
		Len:    len(m.writeQueueChan),
		Cap:    cap(m.writeQueueChan),
	}, true
}
