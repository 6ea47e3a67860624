// keys/keys.go
// 统一的 Key 定义包，供缓存层和检查工具共同使用
package keys

import (
	"fmt"
	"strings"
)

// ===================== 版本控制 =====================
// 设置全局 Key 版本前缀（例如 "v1" → 产出 "v1_<key>"）。
// 如需立刻兼容旧数据，暂时将 KeyVersion 设为 "" 即可不加版本前缀。
const KeyVersion = "v1"

// withVer 把版本号拼到最前面（保持下划线风格：v1_<...>）
func withVer(s string) string {
	if KeyVersion == "" {
		return s
	}
	return KeyVersion + "_" + s
}

// KeyVersionPrefix 当前版本所有键的公共前缀（全库遍历用）
// 例：v1_
func KeyVersionPrefix() string {
	return withVer("")
}

// StripVersion 读取回退辅助：把带版本的键去掉版本前缀，便于双读回退。
// 例：newKey := KeySnapshotMeta(fp); oldKey := StripVersion(newKey)
func StripVersion(prefixed string) string {
	if KeyVersion == "" {
		return prefixed
	}
	p := KeyVersion + "_"
	return strings.TrimPrefix(prefixed, p)
}

// ===================== 快照相关 =====================
// 一次 getProgramAccounts 的结果按请求指纹分组存储：
// 一条 meta 记录 + 若干条账户记录（序号 20 位零填充，保证迭代顺序）

// KeySnapshotMeta 快照元信息（拉取时间、账户数、请求参数摘要）
// 例：v1_snap_meta_<fingerprint>
func KeySnapshotMeta(fingerprint string) string {
	return withVer("snap_meta_" + fingerprint)
}

// KeySnapshotMetaPrefix 快照元信息前缀（遍历全部快照用）
// 例：v1_snap_meta_
func KeySnapshotMetaPrefix() string {
	return withVer("snap_meta_")
}

// KeySnapshotAccount 快照内单个账户记录
// 例：v1_snap_acct_<fingerprint>_<seq 20 位>
func KeySnapshotAccount(fingerprint string, seq uint64) string {
	return withVer(fmt.Sprintf("snap_acct_%s_%s", fingerprint, padUint(seq)))
}

// KeySnapshotAccountPrefix 某个快照全部账户记录的前缀
// 例：v1_snap_acct_<fingerprint>_
func KeySnapshotAccountPrefix(fingerprint string) string {
	return withVer(fmt.Sprintf("snap_acct_%s_", fingerprint))
}

// KeySnapshotAccountAnyPrefix 所有快照账户记录的前缀（统计/清理用）
// 例：v1_snap_acct_
func KeySnapshotAccountAnyPrefix() string {
	return withVer("snap_acct_")
}

// KeyLatestSnapshot 程序+账户类型到最近一次快照指纹的映射（离线模式查最近结果）
// 例：v1_snap_latest_<programID>_<accountName>
func KeyLatestSnapshot(programID, accountName string) string {
	return withVer(fmt.Sprintf("snap_latest_%s_%s", programID, accountName))
}

// ===================== IDL 相关 =====================

// KeyIDLDocument 程序的 IDL 原文缓存
// 例：v1_idl_doc_<programID>
func KeyIDLDocument(programID string) string {
	return withVer("idl_doc_" + programID)
}

// KeyIDLDocumentPrefix IDL 缓存前缀
// 例：v1_idl_doc_
func KeyIDLDocumentPrefix() string {
	return withVer("idl_doc_")
}

// ===================== 扫描历史 =====================

// KeyScanRecord 扫描历史记录
// 例：v1_scan_<programID>_<invertedTimestamp>_<fingerprint>
func KeyScanRecord(programID string, timestamp int64, fingerprint string) string {
	// 使用倒序时间戳，让最新的扫描记录排在前面
	invertedTimestamp := ^uint64(timestamp)
	return withVer(fmt.Sprintf("scan_%s_%020d_%s", programID, invertedTimestamp, fingerprint))
}

// KeyScanRecordPrefix 扫描历史前缀（按程序）
// 例：v1_scan_<programID>_
func KeyScanRecordPrefix(programID string) string {
	return withVer(fmt.Sprintf("scan_%s_", programID))
}

func padUint(v uint64) string {
	return fmt.Sprintf("%020d", v)
}
