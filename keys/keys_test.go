// keys/keys_test.go
package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSnapshotKeys 测试快照相关 key 函数
func TestSnapshotKeys(t *testing.T) {
	// 测试 KeySnapshotMeta
	t.Run("KeySnapshotMeta", func(t *testing.T) {
		key := KeySnapshotMeta("a1b2c3d4")
		assert.Equal(t, "v1_snap_meta_a1b2c3d4", key)
	})

	// 测试 KeySnapshotAccount
	t.Run("KeySnapshotAccount", func(t *testing.T) {
		key := KeySnapshotAccount("a1b2c3d4", 0)
		// seq 用 padUint 格式化为 20 位
		assert.Equal(t, "v1_snap_acct_a1b2c3d4_00000000000000000000", key)

		key = KeySnapshotAccount("a1b2c3d4", 42)
		assert.Equal(t, "v1_snap_acct_a1b2c3d4_00000000000000000042", key)
	})

	// 测试 KeySnapshotAccountPrefix
	t.Run("KeySnapshotAccountPrefix", func(t *testing.T) {
		prefix := KeySnapshotAccountPrefix("a1b2c3d4")
		assert.Equal(t, "v1_snap_acct_a1b2c3d4_", prefix)

		// 前缀必须覆盖对应快照的全部账户键
		assert.Contains(t, KeySnapshotAccount("a1b2c3d4", 7), prefix)
	})

	// 测试 KeyLatestSnapshot
	t.Run("KeyLatestSnapshot", func(t *testing.T) {
		key := KeyLatestSnapshot("PERPHjGBqRHArX4DySjwM6UJHiR3sWAatqfdBS2qQJu", "Custody")
		assert.Equal(t, "v1_snap_latest_PERPHjGBqRHArX4DySjwM6UJHiR3sWAatqfdBS2qQJu_Custody", key)
	})

	// 测试 KeyIDLDocument
	t.Run("KeyIDLDocument", func(t *testing.T) {
		key := KeyIDLDocument("prog123")
		assert.Equal(t, "v1_idl_doc_prog123", key)
	})
}

// TestScanRecordKeys 测试扫描历史 key：倒序时间戳让新记录排在前面
func TestScanRecordKeys(t *testing.T) {
	earlier := KeyScanRecord("prog", 1000, "fp1")
	later := KeyScanRecord("prog", 2000, "fp2")

	// 字典序上 later < earlier，正向迭代先见到最新记录
	assert.Less(t, later, earlier)

	prefix := KeyScanRecordPrefix("prog")
	assert.Equal(t, "v1_scan_prog_", prefix)
	assert.Contains(t, earlier, prefix)
	assert.Contains(t, later, prefix)
}

// TestStripVersion 测试版本前缀去除
func TestStripVersion(t *testing.T) {
	key := KeySnapshotMeta("fp")
	assert.Equal(t, "snap_meta_fp", StripVersion(key))

	// 没有版本前缀的键原样返回
	assert.Equal(t, "plain_key", StripVersion("plain_key"))
}
