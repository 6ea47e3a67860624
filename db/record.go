package db

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"solscan/types"
)

// ErrCorruptRecord 缓存记录反序列化失败（磁盘数据损坏或版本不兼容）
var ErrCorruptRecord = errors.New("corrupt cache record")

// 账户记录的字段号（proto wire 格式，未知字段跳过以保持向前兼容）
const (
	accFieldPubkey     = 1
	accFieldData       = 2
	accFieldLamports   = 3
	accFieldOwner      = 4
	accFieldExecutable = 5
	accFieldRentEpoch  = 6
)

// EncodeAccountRecord 把账户序列化成 proto wire 字节串。
// 零值字段不写入，解码端按零值补齐。
func EncodeAccountRecord(a *types.ProgramAccount) []byte {
	var b []byte
	if a.Pubkey != "" {
		b = protowire.AppendTag(b, accFieldPubkey, protowire.BytesType)
		b = protowire.AppendString(b, a.Pubkey)
	}
	if len(a.Data) > 0 {
		b = protowire.AppendTag(b, accFieldData, protowire.BytesType)
		b = protowire.AppendBytes(b, a.Data)
	}
	if a.Lamports != 0 {
		b = protowire.AppendTag(b, accFieldLamports, protowire.VarintType)
		b = protowire.AppendVarint(b, a.Lamports)
	}
	if a.Owner != "" {
		b = protowire.AppendTag(b, accFieldOwner, protowire.BytesType)
		b = protowire.AppendString(b, a.Owner)
	}
	if a.Executable {
		b = protowire.AppendTag(b, accFieldExecutable, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if a.RentEpoch != 0 {
		b = protowire.AppendTag(b, accFieldRentEpoch, protowire.VarintType)
		b = protowire.AppendVarint(b, a.RentEpoch)
	}
	return b
}

// DecodeAccountRecord 反解账户记录，未知字段原样跳过
func DecodeAccountRecord(raw []byte) (types.ProgramAccount, error) {
	var acct types.ProgramAccount
	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return acct, fmt.Errorf("%w: bad tag: %v", ErrCorruptRecord, protowire.ParseError(n))
		}
		raw = raw[n:]

		switch num {
		case accFieldPubkey:
			v, n := protowire.ConsumeString(raw)
			if n < 0 {
				return acct, fmt.Errorf("%w: pubkey: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			acct.Pubkey = v
			raw = raw[n:]
		case accFieldData:
			v, n := protowire.ConsumeBytes(raw)
			if n < 0 {
				return acct, fmt.Errorf("%w: data: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			acct.Data = append([]byte(nil), v...)
			raw = raw[n:]
		case accFieldLamports:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return acct, fmt.Errorf("%w: lamports: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			acct.Lamports = v
			raw = raw[n:]
		case accFieldOwner:
			v, n := protowire.ConsumeString(raw)
			if n < 0 {
				return acct, fmt.Errorf("%w: owner: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			acct.Owner = v
			raw = raw[n:]
		case accFieldExecutable:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return acct, fmt.Errorf("%w: executable: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			acct.Executable = v != 0
			raw = raw[n:]
		case accFieldRentEpoch:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return acct, fmt.Errorf("%w: rent epoch: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			acct.RentEpoch = v
			raw = raw[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, raw)
			if n < 0 {
				return acct, fmt.Errorf("%w: field %d: %v", ErrCorruptRecord, num, protowire.ParseError(n))
			}
			raw = raw[n:]
		}
	}
	return acct, nil
}

// SnapshotMeta 一次快照的元信息
type SnapshotMeta struct {
	Fingerprint  string // 请求指纹（murmur 哈希的十六进制）
	ProgramID    string
	AccountName  string
	FetchedAt    int64  // 拉取时间（unix 秒）
	Count        uint64 // 快照内账户数
	FilterDigest string // 过滤器的人类可读摘要
}

const (
	metaFieldFingerprint  = 1
	metaFieldProgramID    = 2
	metaFieldAccountName  = 3
	metaFieldFetchedAt    = 4
	metaFieldCount        = 5
	metaFieldFilterDigest = 6
)

// EncodeSnapshotMeta 序列化快照元信息
func EncodeSnapshotMeta(m *SnapshotMeta) []byte {
	var b []byte
	if m.Fingerprint != "" {
		b = protowire.AppendTag(b, metaFieldFingerprint, protowire.BytesType)
		b = protowire.AppendString(b, m.Fingerprint)
	}
	if m.ProgramID != "" {
		b = protowire.AppendTag(b, metaFieldProgramID, protowire.BytesType)
		b = protowire.AppendString(b, m.ProgramID)
	}
	if m.AccountName != "" {
		b = protowire.AppendTag(b, metaFieldAccountName, protowire.BytesType)
		b = protowire.AppendString(b, m.AccountName)
	}
	if m.FetchedAt != 0 {
		b = protowire.AppendTag(b, metaFieldFetchedAt, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.FetchedAt))
	}
	if m.Count != 0 {
		b = protowire.AppendTag(b, metaFieldCount, protowire.VarintType)
		b = protowire.AppendVarint(b, m.Count)
	}
	if m.FilterDigest != "" {
		b = protowire.AppendTag(b, metaFieldFilterDigest, protowire.BytesType)
		b = protowire.AppendString(b, m.FilterDigest)
	}
	return b
}

// DecodeSnapshotMeta 反解快照元信息
func DecodeSnapshotMeta(raw []byte) (*SnapshotMeta, error) {
	meta := &SnapshotMeta{}
	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return nil, fmt.Errorf("%w: bad tag: %v", ErrCorruptRecord, protowire.ParseError(n))
		}
		raw = raw[n:]

		switch num {
		case metaFieldFingerprint:
			v, n := protowire.ConsumeString(raw)
			if n < 0 {
				return nil, fmt.Errorf("%w: fingerprint: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			meta.Fingerprint = v
			raw = raw[n:]
		case metaFieldProgramID:
			v, n := protowire.ConsumeString(raw)
			if n < 0 {
				return nil, fmt.Errorf("%w: program id: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			meta.ProgramID = v
			raw = raw[n:]
		case metaFieldAccountName:
			v, n := protowire.ConsumeString(raw)
			if n < 0 {
				return nil, fmt.Errorf("%w: account name: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			meta.AccountName = v
			raw = raw[n:]
		case metaFieldFetchedAt:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return nil, fmt.Errorf("%w: fetched at: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			meta.FetchedAt = int64(v)
			raw = raw[n:]
		case metaFieldCount:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return nil, fmt.Errorf("%w: count: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			meta.Count = v
			raw = raw[n:]
		case metaFieldFilterDigest:
			v, n := protowire.ConsumeString(raw)
			if n < 0 {
				return nil, fmt.Errorf("%w: filter digest: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			meta.FilterDigest = v
			raw = raw[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, raw)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrCorruptRecord, num, protowire.ParseError(n))
			}
			raw = raw[n:]
		}
	}
	return meta, nil
}
