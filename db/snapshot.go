package db

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v2"

	"solscan/keys"
	"solscan/logs"
	"solscan/types"
	"solscan/utils"
)

// RequestFingerprint 请求的稳定指纹：程序地址 + 账户类型 + 全部过滤器。
// 过滤器的偏移和字节都参与哈希，约束值不同的查询各有各的快照。
func RequestFingerprint(req *types.QueryRequest) string {
	var sb strings.Builder
	sb.WriteString(req.ProgramID)
	sb.WriteByte('|')
	sb.WriteString(req.AccountName)
	for _, f := range req.Filters {
		fmt.Fprintf(&sb, "|%d:%x", f.Offset, f.Bytes)
	}
	return fmt.Sprintf("%x", utils.MurmurHash([]byte(sb.String())))
}

// filterDigest 过滤器的人类可读摘要（meta 记录与检查工具用）
func filterDigest(filters []types.MemcmpFilter) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, ";")
}

// SaveSnapshot 把一次查询结果整体落盘：
// 旧账户记录先删（结果可能比上次少），再写新记录 + meta + latest 映射 + 扫描历史，
// 最后强制刷盘，保证本进程内马上可读。
func (manager *Manager) SaveSnapshot(req *types.QueryRequest, accounts []types.ProgramAccount) error {
	fp := RequestFingerprint(req)

	stale, err := manager.ScanKeysWithLimit(keys.KeySnapshotAccountPrefix(fp), 0)
	if err != nil {
		return fmt.Errorf("scan stale snapshot %s: %w", fp, err)
	}
	for _, k := range stale {
		manager.EnqueueDelete(k)
	}

	for i := range accounts {
		raw := EncodeAccountRecord(&accounts[i])
		manager.EnqueueSet(keys.KeySnapshotAccount(fp, uint64(i)), raw)
	}

	now := time.Now()
	meta := &SnapshotMeta{
		Fingerprint:  fp,
		ProgramID:    req.ProgramID,
		AccountName:  req.AccountName,
		FetchedAt:    now.Unix(),
		Count:        uint64(len(accounts)),
		FilterDigest: filterDigest(req.Filters),
	}
	manager.EnqueueSet(keys.KeySnapshotMeta(fp), EncodeSnapshotMeta(meta))
	manager.EnqueueSet(keys.KeyLatestSnapshot(req.ProgramID, req.AccountName), []byte(fp))
	manager.EnqueueSet(keys.KeyScanRecord(req.ProgramID, now.Unix(), fp), []byte(fp))

	if err := manager.ForceFlush(); err != nil {
		return fmt.Errorf("flush snapshot %s: %w", fp, err)
	}
	logs.Debug("[Cache] saved snapshot %s: %d accounts", fp, len(accounts))
	return nil
}

// LoadSnapshot 按请求指纹读快照。
// 没有记录或已过期都按未命中处理（调用方重新拉取后覆盖）；
// 记录数与 meta 不一致视为损坏，同样按未命中处理并告警。
func (manager *Manager) LoadSnapshot(req *types.QueryRequest) ([]types.ProgramAccount, bool, error) {
	fp := RequestFingerprint(req)

	metaRaw, err := manager.Get(keys.KeySnapshotMeta(fp))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read snapshot meta %s: %w", fp, err)
	}

	meta, err := DecodeSnapshotMeta(metaRaw)
	if err != nil {
		logs.Warn("[Cache] snapshot %s meta corrupt, treating as miss: %v", fp, err)
		return nil, false, nil
	}

	ttl := time.Duration(0)
	if manager.cfg != nil {
		ttl = manager.cfg.Cache.SnapshotTTL
	}
	if ttl > 0 && time.Since(time.Unix(meta.FetchedAt, 0)) > ttl {
		logs.Debug("[Cache] snapshot %s expired (fetched %s ago)", fp, time.Since(time.Unix(meta.FetchedAt, 0)).Truncate(time.Second))
		return nil, false, nil
	}

	kvs, err := manager.ScanKVWithLimit(keys.KeySnapshotAccountPrefix(fp), 0)
	if err != nil {
		return nil, false, fmt.Errorf("scan snapshot %s: %w", fp, err)
	}
	if uint64(len(kvs)) != meta.Count {
		logs.Warn("[Cache] snapshot %s incomplete: meta says %d accounts, found %d", fp, meta.Count, len(kvs))
		return nil, false, nil
	}

	// 键带 20 位零填充序号，按字典序排回写入顺序
	ordered := make([]string, 0, len(kvs))
	for k := range kvs {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	accounts := make([]types.ProgramAccount, 0, len(ordered))
	for _, k := range ordered {
		acct, err := DecodeAccountRecord(kvs[k])
		if err != nil {
			logs.Warn("[Cache] snapshot %s record corrupt, treating as miss: %v", fp, err)
			return nil, false, nil
		}
		accounts = append(accounts, acct)
	}

	logs.Debug("[Cache] snapshot %s hit: %d accounts, fetched at %s", fp, len(accounts), time.Unix(meta.FetchedAt, 0).Format(time.RFC3339))
	return accounts, true, nil
}

// LatestFingerprint 程序+账户类型最近一次落盘的快照指纹
func (manager *Manager) LatestFingerprint(programID, accountName string) (string, bool, error) {
	raw, err := manager.Get(keys.KeyLatestSnapshot(programID, accountName))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return string(raw), true, nil
}

// SaveIDLDocument 缓存程序的 IDL 原文
func (manager *Manager) SaveIDLDocument(programID string, doc []byte) error {
	manager.EnqueueSet(keys.KeyIDLDocument(programID), doc)
	return manager.ForceFlush()
}

// LoadIDLDocument 读取缓存的 IDL 原文
func (manager *Manager) LoadIDLDocument(programID string) ([]byte, bool, error) {
	raw, err := manager.Get(keys.KeyIDLDocument(programID))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}
