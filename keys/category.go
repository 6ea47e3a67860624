// keys/category.go
// Key 分类模块：缓存检查与清理时判断数据归属
package keys

import "strings"

// KeyCategory 定义 Key 的数据归属
type KeyCategory int

const (
	CategoryPayload KeyCategory = iota // 快照账户数据（体积大，按指纹批量清理）
	CategoryMeta                       // 快照元信息 / 最近指纹映射 / 扫描历史
	CategoryCatalog                    // IDL 原文缓存
	CategoryOther                      // 未识别的键（旧版本遗留等）
)

// KeyFamilySpec 描述一类键：前缀、构造函数名、用途。
// 检查工具按这张表分组统计，清理逻辑按归属决定删除策略。
type KeyFamilySpec struct {
	Prefix      string
	KeyBuilder  string
	Category    KeyCategory
	Description string
}

// keyFamilySpecs 是缓存键家族的唯一清单。
// 新增 key 构造函数时同步维护这张表。
var keyFamilySpecs = []KeyFamilySpec{
	{Prefix: withVer("snap_acct_"), KeyBuilder: "KeySnapshotAccount", Category: CategoryPayload, Description: "Snapshot account records"},
	{Prefix: withVer("snap_meta_"), KeyBuilder: "KeySnapshotMeta", Category: CategoryMeta, Description: "Snapshot metadata"},
	{Prefix: withVer("snap_latest_"), KeyBuilder: "KeyLatestSnapshot", Category: CategoryMeta, Description: "Latest fingerprint per program/account"},
	{Prefix: withVer("scan_"), KeyBuilder: "KeyScanRecord", Category: CategoryMeta, Description: "Scan history (inverted timestamp)"},
	{Prefix: withVer("idl_doc_"), KeyBuilder: "KeyIDLDocument", Category: CategoryCatalog, Description: "Cached IDL documents"},
}

// KeyFamilies 返回当前键家族清单的副本
func KeyFamilies() []KeyFamilySpec {
	out := make([]KeyFamilySpec, len(keyFamilySpecs))
	copy(out, keyFamilySpecs)
	return out
}

// CategorizeKey 判断 key 的数据归属
func CategorizeKey(key string) KeyCategory {
	for _, spec := range keyFamilySpecs {
		if strings.HasPrefix(key, spec.Prefix) {
			return spec.Category
		}
	}
	return CategoryOther
}

// IsSnapshotPayloadKey 判断是否为快照账户数据
func IsSnapshotPayloadKey(key string) bool {
	return strings.HasPrefix(key, withVer("snap_acct_"))
}

// IsSnapshotMetaKey 判断是否为快照元信息
func IsSnapshotMetaKey(key string) bool {
	return strings.HasPrefix(key, withVer("snap_meta_"))
}

// IsIDLKey 判断是否为 IDL 缓存
func IsIDLKey(key string) bool {
	return strings.HasPrefix(key, withVer("idl_doc_"))
}

// IsScanRecordKey 判断是否为扫描历史
func IsScanRecordKey(key string) bool {
	return strings.HasPrefix(key, withVer("scan_"))
}

// FingerprintFromMetaKey 从快照元信息键里取出指纹
func FingerprintFromMetaKey(key string) (string, bool) {
	prefix := withVer("snap_meta_")
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	fp := key[len(prefix):]
	if fp == "" {
		return "", false
	}
	return fp, true
}

// FingerprintFromAccountKey 从快照账户键里取出指纹（去掉末尾的 _<seq>）
func FingerprintFromAccountKey(key string) (string, bool) {
	prefix := withVer("snap_acct_")
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	rest := key[len(prefix):]
	idx := strings.LastIndex(rest, "_")
	if idx <= 0 {
		return "", false
	}
	return rest[:idx], true
}
