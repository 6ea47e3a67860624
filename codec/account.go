// codec/account.go
package codec

import (
	"bytes"
	"fmt"

	"solscan/idl"
)

// FieldValue 解码出的一个字段叶子
type FieldValue struct {
	Name  string // 点号路径
	Value Value
}

// AccountDecoder 按账户模式做整账户解码。
// 叶子描述表在构造时展开一次，之后对每个账户复用。
type AccountDecoder struct {
	acct  *idl.AccountType
	descs []idl.Descriptor
}

// NewAccountDecoder 构造解码器。账户含动态尺寸字段时返回 ErrSchema。
func NewAccountDecoder(at *idl.AccountType) (*AccountDecoder, error) {
	descs, err := at.Descriptors()
	if err != nil {
		return nil, err
	}
	return &AccountDecoder{acct: at, descs: descs}, nil
}

// AccountName 解码器面向的账户类型名
func (d *AccountDecoder) AccountName() string {
	return d.acct.Name
}

// VerifyDiscriminator 数据头部 8 字节是否为该账户类型的判别码
func (d *AccountDecoder) VerifyDiscriminator(data []byte) bool {
	return len(data) >= idl.DiscriminatorLen &&
		bytes.Equal(data[:idl.DiscriminatorLen], d.acct.Discriminator[:])
}

// Decode 解码整个账户：校验判别码后按叶子表提取全部标量。
// 数据不足 8 字节或任一叶子越界 → ErrBufferTooShort；判别码不符 → ErrTypeMismatch。
// 占位叶子（数组、枚举等）只推进偏移，不产出值。
func (d *AccountDecoder) Decode(data []byte) ([]FieldValue, error) {
	if len(data) < idl.DiscriminatorLen {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d for the discriminator",
			ErrBufferTooShort, len(data), idl.DiscriminatorLen)
	}
	if !d.VerifyDiscriminator(data) {
		return nil, fmt.Errorf("%w: data is not a %s account", ErrTypeMismatch, d.acct.Name)
	}

	out := make([]FieldValue, 0, len(d.descs))
	for _, desc := range d.descs {
		if desc.Kind == "" {
			continue // 占位：宽度已在描述表的偏移里体现
		}
		v, err := Decode(data, idl.DiscriminatorLen+desc.Offset, desc.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", desc.Name, err)
		}
		out = append(out, FieldValue{Name: desc.Name, Value: v})
	}
	return out, nil
}

// DecodeMap Decode 的 map 形式（JSON 输出 extracted_variables 用）
func (d *AccountDecoder) DecodeMap(data []byte) (map[string]Value, error) {
	fvs, err := d.Decode(data)
	if err != nil {
		return nil, err
	}
	m := make(map[string]Value, len(fvs))
	for _, fv := range fvs {
		m[fv.Name] = fv.Value
	}
	return m, nil
}
