package db

import (
	"fmt"
	"sort"
	"time"

	"solscan/keys"
	"solscan/logs"
)

// SnapshotInfo 检查工具展示用的快照摘要
type SnapshotInfo struct {
	Fingerprint  string
	ProgramID    string
	AccountName  string
	FetchedAt    time.Time
	Count        uint64
	FilterDigest string
	Expired      bool
}

// CacheReport 整个缓存库的检查结果
type CacheReport struct {
	Snapshots     []SnapshotInfo
	PayloadKeys   int // 快照账户记录条数
	MetaKeys      int // 元信息/索引/历史条数
	CatalogKeys   int // IDL 缓存条数
	OtherKeys     int // 未识别的键（旧版本遗留等）
	ExpiredCount  int
	OrphanedCount int // 有账户记录但 meta 丢失的指纹数
}

// InspectCache 遍历缓存库，按键家族分组统计并列出全部快照。
// 新快照在前（按拉取时间倒序）。
func (manager *Manager) InspectCache() (*CacheReport, error) {
	report := &CacheReport{}
	ttl := time.Duration(0)
	if manager.cfg != nil {
		ttl = manager.cfg.Cache.SnapshotTTL
	}

	metaKVs, err := manager.ScanKVWithLimit(keys.KeySnapshotMetaPrefix(), 0)
	if err != nil {
		return nil, fmt.Errorf("scan snapshot metas: %w", err)
	}

	known := make(map[string]bool, len(metaKVs))
	for k, raw := range metaKVs {
		fp, ok := keys.FingerprintFromMetaKey(k)
		if !ok {
			continue
		}
		known[fp] = true

		meta, err := DecodeSnapshotMeta(raw)
		if err != nil {
			logs.Warn("[Cache] inspect: meta %s corrupt: %v", k, err)
			continue
		}
		fetched := time.Unix(meta.FetchedAt, 0)
		expired := ttl > 0 && time.Since(fetched) > ttl
		if expired {
			report.ExpiredCount++
		}
		report.Snapshots = append(report.Snapshots, SnapshotInfo{
			Fingerprint:  fp,
			ProgramID:    meta.ProgramID,
			AccountName:  meta.AccountName,
			FetchedAt:    fetched,
			Count:        meta.Count,
			FilterDigest: meta.FilterDigest,
			Expired:      expired,
		})
	}
	sort.Slice(report.Snapshots, func(i, j int) bool {
		return report.Snapshots[i].FetchedAt.After(report.Snapshots[j].FetchedAt)
	})

	// 全库按键家族分组计数，顺带找出没有 meta 的孤儿账户记录
	allKeys, err := manager.ScanKeysWithLimit(keys.KeyVersionPrefix(), 0)
	if err != nil {
		return nil, fmt.Errorf("scan all keys: %w", err)
	}
	orphans := make(map[string]bool)
	for _, k := range allKeys {
		switch keys.CategorizeKey(k) {
		case keys.CategoryPayload:
			report.PayloadKeys++
			if fp, ok := keys.FingerprintFromAccountKey(k); ok && !known[fp] {
				orphans[fp] = true
			}
		case keys.CategoryMeta:
			report.MetaKeys++
		case keys.CategoryCatalog:
			report.CatalogKeys++
		default:
			report.OtherKeys++
		}
	}
	report.OrphanedCount = len(orphans)

	return report, nil
}

// PurgeSnapshot 删除一个快照的全部记录（账户 + meta）。
// 先收集再入队删除，最后强制刷盘。
func (manager *Manager) PurgeSnapshot(fingerprint string) (int, error) {
	payload, err := manager.ScanKeysWithLimit(keys.KeySnapshotAccountPrefix(fingerprint), 0)
	if err != nil {
		return 0, fmt.Errorf("scan snapshot %s: %w", fingerprint, err)
	}

	for _, k := range payload {
		manager.EnqueueDelete(k)
	}
	manager.EnqueueDelete(keys.KeySnapshotMeta(fingerprint))

	if err := manager.ForceFlush(); err != nil {
		return 0, err
	}
	return len(payload), nil
}

// PurgeExpired 清理全部过期快照和孤儿账户记录，返回删掉的快照数
func (manager *Manager) PurgeExpired() (int, error) {
	report, err := manager.InspectCache()
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, info := range report.Snapshots {
		if !info.Expired {
			continue
		}
		if _, err := manager.PurgeSnapshot(info.Fingerprint); err != nil {
			logs.Warn("[Cache] purge snapshot %s failed: %v", info.Fingerprint, err)
			continue
		}
		purged++
	}

	// 孤儿账户记录：meta 已丢失，按指纹整组清掉
	if report.OrphanedCount > 0 {
		allPayload, err := manager.ScanKeysWithLimit(keys.KeySnapshotAccountAnyPrefix(), 0)
		if err != nil {
			return purged, err
		}
		known := make(map[string]bool, len(report.Snapshots))
		for _, info := range report.Snapshots {
			known[info.Fingerprint] = true
		}
		removed := 0
		for _, k := range allPayload {
			if fp, ok := keys.FingerprintFromAccountKey(k); ok && !known[fp] {
				manager.EnqueueDelete(k)
				removed++
			}
		}
		if removed > 0 {
			if err := manager.ForceFlush(); err != nil {
				return purged, err
			}
			logs.Info("[Cache] removed %d orphaned account records", removed)
		}
	}

	return purged, nil
}
