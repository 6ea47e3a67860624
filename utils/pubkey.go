// utils/pubkey.go
package utils

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// PubkeyLen Solana 公钥长度（ed25519，32字节）
const PubkeyLen = 32

var ErrInvalidPubkey = errors.New("invalid base58 pubkey")

// DecodePubkey 解析 base58 公钥字符串为 32 字节
func DecodePubkey(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidPubkey)
	}
	raw := base58.Decode(s)
	// base58.Decode 对非法字符返回空切片
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPubkey, s)
	}
	if len(raw) != PubkeyLen {
		return nil, fmt.Errorf("%w: %q decodes to %d bytes, want %d", ErrInvalidPubkey, s, len(raw), PubkeyLen)
	}
	return raw, nil
}

// EncodePubkey 将 32 字节公钥编码为 base58 字符串
func EncodePubkey(raw []byte) string {
	return base58.Encode(raw)
}

// IsValidPubkey 检查字符串是否为合法的 base58 公钥
func IsValidPubkey(s string) bool {
	_, err := DecodePubkey(s)
	return err == nil
}
