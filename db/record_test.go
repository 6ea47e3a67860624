package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"solscan/types"
)

// TestAccountRecordRoundTrip 账户记录序列化往返
func TestAccountRecordRoundTrip(t *testing.T) {
	acct := types.ProgramAccount{
		Pubkey:     "BUvduFTd2sWFagCunBPLupG8fBTJqweLw9DuhruNFSCm",
		Data:       []byte{0x01, 0x02, 0x03, 0xFF, 0x00, 0x7F},
		Lamports:   2039280,
		Owner:      "PERPHjGBqRHArX4DySjwM6UJHiR3sWAatqfdBS2qQJu",
		Executable: true,
		RentEpoch:  361,
	}

	raw := EncodeAccountRecord(&acct)
	require.NotEmpty(t, raw)

	got, err := DecodeAccountRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, acct, got)
}

// TestAccountRecordZeroValues 零值字段不写入，解码端按零值补齐
func TestAccountRecordZeroValues(t *testing.T) {
	acct := types.ProgramAccount{}
	raw := EncodeAccountRecord(&acct)
	assert.Empty(t, raw)

	got, err := DecodeAccountRecord(nil)
	require.NoError(t, err)
	assert.Equal(t, acct, got)
}

// TestAccountRecordSkipsUnknownFields 带未知字段的记录仍可解码（向前兼容）
func TestAccountRecordSkipsUnknownFields(t *testing.T) {
	acct := types.ProgramAccount{Pubkey: "test", Lamports: 5}
	raw := EncodeAccountRecord(&acct)

	// 追加一个未来版本的字段
	raw = protowire.AppendTag(raw, 99, protowire.BytesType)
	raw = protowire.AppendString(raw, "future data")

	got, err := DecodeAccountRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, acct, got)
}

// TestAccountRecordCorrupt 损坏数据报 ErrCorruptRecord
func TestAccountRecordCorrupt(t *testing.T) {
	acct := types.ProgramAccount{Pubkey: "test", Data: []byte{1, 2, 3}}
	raw := EncodeAccountRecord(&acct)

	// 截断到 bytes 字段中间
	_, err := DecodeAccountRecord(raw[:len(raw)-2])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

// TestSnapshotMetaRoundTrip 快照元信息序列化往返
func TestSnapshotMetaRoundTrip(t *testing.T) {
	meta := &SnapshotMeta{
		Fingerprint:  "cafe1234beef5678",
		ProgramID:    "PERPHjGBqRHArX4DySjwM6UJHiR3sWAatqfdBS2qQJu",
		AccountName:  "Custody",
		FetchedAt:    1724476800,
		Count:        42,
		FilterDigest: "memcmp{offset=0, len=8};memcmp{offset=41, len=1}",
	}

	raw := EncodeSnapshotMeta(meta)
	require.NotEmpty(t, raw)

	got, err := DecodeSnapshotMeta(raw)
	require.NoError(t, err)
	assert.Equal(t, meta, got)
}

// TestRequestFingerprint 指纹稳定且对过滤器敏感
func TestRequestFingerprint(t *testing.T) {
	base := &types.QueryRequest{
		ProgramID:   "prog",
		AccountName: "Custody",
		Filters: []types.MemcmpFilter{
			{Offset: 0, Bytes: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
			{Offset: 41, Bytes: []byte{0x01}},
		},
	}

	// 1、同一请求指纹稳定
	assert.Equal(t, RequestFingerprint(base), RequestFingerprint(base))

	// 2、过滤器字节不同 → 指纹不同
	other := &types.QueryRequest{
		ProgramID:   "prog",
		AccountName: "Custody",
		Filters: []types.MemcmpFilter{
			{Offset: 0, Bytes: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
			{Offset: 41, Bytes: []byte{0x00}},
		},
	}
	assert.NotEqual(t, RequestFingerprint(base), RequestFingerprint(other))

	// 3、过滤器偏移不同 → 指纹不同
	shifted := &types.QueryRequest{
		ProgramID:   "prog",
		AccountName: "Custody",
		Filters: []types.MemcmpFilter{
			{Offset: 0, Bytes: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
			{Offset: 42, Bytes: []byte{0x01}},
		},
	}
	assert.NotEqual(t, RequestFingerprint(base), RequestFingerprint(shifted))

	// 4、账户类型不同 → 指纹不同
	renamed := &types.QueryRequest{ProgramID: "prog", AccountName: "Pool"}
	assert.NotEqual(t, RequestFingerprint(&types.QueryRequest{ProgramID: "prog", AccountName: "Custody"}), RequestFingerprint(renamed))
}
