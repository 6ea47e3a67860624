// codec/codec.go
// 定宽标量的二进制编解码。账户数据一律小端。
// Decode 面向显示与统计；Encode 把命令行文本值编码成与链上字节
// 逐字节可比的目标（浮点按位精确，bool 编码为 0x01/0x00）。
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"

	"solscan/idl"
	"solscan/utils"
)

// 哨兵错误
var (
	// ErrValueParse 文本值无法按目标类型编码（查询前即失败）
	ErrValueParse = errors.New("value parse error")
	// ErrBufferTooShort 账户数据不够长（单账户可恢复：跳过并计数）
	ErrBufferTooShort = errors.New("buffer too short")
	// ErrTypeMismatch 账户判别码与期望的账户类型不符（单账户可恢复）
	ErrTypeMismatch = errors.New("account type mismatch")
)

// twoPow128 / twoPow127 i128/u128 的补码与范围边界
var (
	twoPow128 = new(big.Int).Lsh(big.NewInt(1), 128)
	twoPow127 = new(big.Int).Lsh(big.NewInt(1), 127)
)

// Value 解码后的标量值，按 Kind 恰好填充一个载荷字段
type Value struct {
	Kind    idl.Kind
	Uint    uint64          // u8/u16/u32/u64
	Int     int64           // i8/i16/i32/i64
	Float   float64         // f32/f64
	Bool    bool            // bool
	Decimal decimal.Decimal // u128/i128
	Pubkey  string          // publicKey（base58）
}

// String 显示用文本（interest 统计与控制台输出用）
func (v Value) String() string {
	switch v.Kind {
	case idl.KindU8, idl.KindU16, idl.KindU32, idl.KindU64:
		return strconv.FormatUint(v.Uint, 10)
	case idl.KindI8, idl.KindI16, idl.KindI32, idl.KindI64:
		return strconv.FormatInt(v.Int, 10)
	case idl.KindF32:
		return strconv.FormatFloat(v.Float, 'g', -1, 32)
	case idl.KindF64:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case idl.KindBool:
		return strconv.FormatBool(v.Bool)
	case idl.KindU128, idl.KindI128:
		return v.Decimal.String()
	case idl.KindPubkey:
		return v.Pubkey
	default:
		return ""
	}
}

// MarshalJSON 输出为原生 JSON 类型；128 位整数走字符串避免精度丢失
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case idl.KindU8, idl.KindU16, idl.KindU32, idl.KindU64:
		return []byte(strconv.FormatUint(v.Uint, 10)), nil
	case idl.KindI8, idl.KindI16, idl.KindI32, idl.KindI64:
		return []byte(strconv.FormatInt(v.Int, 10)), nil
	case idl.KindF32, idl.KindF64:
		// NaN/Inf 不是合法 JSON，退化为字符串
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return []byte(strconv.Quote(v.String())), nil
		}
		return []byte(v.String()), nil
	case idl.KindBool:
		return []byte(strconv.FormatBool(v.Bool)), nil
	case idl.KindU128, idl.KindI128:
		return []byte(strconv.Quote(v.Decimal.String())), nil
	case idl.KindPubkey:
		return []byte(strconv.Quote(v.Pubkey)), nil
	default:
		return []byte("null"), nil
	}
}

// ========== 解码 ==========

// Decode 从 data[off:] 按类型解码一个标量。
// off 为 data 内的绝对偏移；越界报 ErrBufferTooShort。
func Decode(data []byte, off int, k idl.Kind) (Value, error) {
	w, ok := k.Width()
	if !ok {
		return Value{}, fmt.Errorf("%w: kind %q is not a fixed-width scalar", idl.ErrSchema, k)
	}
	if off < 0 || off+w > len(data) {
		return Value{}, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrBufferTooShort, w, off, len(data))
	}
	b := data[off : off+w]

	v := Value{Kind: k}
	switch k {
	case idl.KindU8:
		v.Uint = uint64(b[0])
	case idl.KindU16:
		v.Uint = uint64(binary.LittleEndian.Uint16(b))
	case idl.KindU32:
		v.Uint = uint64(binary.LittleEndian.Uint32(b))
	case idl.KindU64:
		v.Uint = binary.LittleEndian.Uint64(b)
	case idl.KindI8:
		v.Int = int64(int8(b[0]))
	case idl.KindI16:
		v.Int = int64(int16(binary.LittleEndian.Uint16(b)))
	case idl.KindI32:
		v.Int = int64(int32(binary.LittleEndian.Uint32(b)))
	case idl.KindI64:
		v.Int = int64(binary.LittleEndian.Uint64(b))
	case idl.KindF32:
		v.Float = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case idl.KindF64:
		v.Float = math.Float64frombits(binary.LittleEndian.Uint64(b))
	case idl.KindBool:
		v.Bool = b[0] != 0
	case idl.KindU128:
		v.Decimal = decimal.NewFromBigInt(leToBig(b), 0)
	case idl.KindI128:
		bi := leToBig(b)
		if bi.Cmp(twoPow127) >= 0 {
			bi.Sub(bi, twoPow128) // 补码还原负数
		}
		v.Decimal = decimal.NewFromBigInt(bi, 0)
	case idl.KindPubkey:
		v.Pubkey = utils.EncodePubkey(b)
	default:
		return Value{}, fmt.Errorf("%w: unsupported scalar kind %q", idl.ErrSchema, k)
	}
	return v, nil
}

// leToBig 小端字节 → 无符号大整数
func leToBig(le []byte) *big.Int {
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	return new(big.Int).SetBytes(be)
}

// ========== 编码 ==========

// Encode 把文本值按目标类型编码为小端字节串。
// 非法文本、超范围、非 32 字节 base58 公钥等一律报 ErrValueParse。
func Encode(text string, k idl.Kind) ([]byte, error) {
	switch k {
	case idl.KindU8, idl.KindU16, idl.KindU32, idl.KindU64:
		w, _ := k.Width()
		u, err := strconv.ParseUint(text, 10, w*8)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid %s: %v", ErrValueParse, text, k, err)
		}
		return putUint(u, w), nil

	case idl.KindI8, idl.KindI16, idl.KindI32, idl.KindI64:
		w, _ := k.Width()
		i, err := strconv.ParseInt(text, 10, w*8)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid %s: %v", ErrValueParse, text, k, err)
		}
		return putUint(uint64(i), w), nil

	case idl.KindF32:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid f32: %v", ErrValueParse, text, err)
		}
		return putUint(uint64(math.Float32bits(float32(f))), 4), nil

	case idl.KindF64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid f64: %v", ErrValueParse, text, err)
		}
		return putUint(math.Float64bits(f), 8), nil

	case idl.KindBool:
		switch text {
		case "true":
			return []byte{1}, nil
		case "false":
			return []byte{0}, nil
		default:
			return nil, fmt.Errorf("%w: %q is not a valid bool (want true/false)", ErrValueParse, text)
		}

	case idl.KindU128:
		bi, err := parse128(text)
		if err != nil {
			return nil, err
		}
		if bi.Sign() < 0 || bi.Cmp(twoPow128) >= 0 {
			return nil, fmt.Errorf("%w: %q out of u128 range", ErrValueParse, text)
		}
		return bigToLE(bi, 16), nil

	case idl.KindI128:
		bi, err := parse128(text)
		if err != nil {
			return nil, err
		}
		min := new(big.Int).Neg(twoPow127)
		if bi.Cmp(min) < 0 || bi.Cmp(twoPow127) >= 0 {
			return nil, fmt.Errorf("%w: %q out of i128 range", ErrValueParse, text)
		}
		if bi.Sign() < 0 {
			bi = new(big.Int).Add(twoPow128, bi) // 补码
		}
		return bigToLE(bi, 16), nil

	case idl.KindPubkey:
		raw, err := utils.DecodePubkey(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValueParse, err)
		}
		return raw, nil

	default:
		return nil, fmt.Errorf("%w: cannot encode a value for non-scalar type %q", ErrValueParse, k)
	}
}

// parse128 128 位整数文本解析（decimal 接受科学计数法，但这里要求整数值）
func parse128(text string) (*big.Int, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid 128-bit integer: %v", ErrValueParse, text, err)
	}
	if !d.IsInteger() {
		return nil, fmt.Errorf("%w: %q has a fractional part", ErrValueParse, text)
	}
	return d.BigInt(), nil
}

func putUint(u uint64, w int) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], u)
	out := make([]byte, w)
	copy(out, tmp[:w])
	return out
}

// bigToLE 非负大整数 → 定宽小端
func bigToLE(bi *big.Int, w int) []byte {
	be := bi.Bytes()
	out := make([]byte, w)
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	return out
}
