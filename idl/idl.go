// idl/idl.go
// Anchor 风格 IDL 的解析与账户模式目录。
// 账户数据布局：8 字节判别码头部 + 按字段声明顺序的小端定宽编码。
package idl

import (
	"encoding/json"
	"errors"
	"fmt"

	"solscan/utils"
)

// DiscriminatorLen 账户判别码头部长度
const DiscriminatorLen = 8

// 哨兵错误
var (
	// ErrSchema IDL 文档结构非法、引用未定义类型或含动态尺寸类型
	ErrSchema = errors.New("schema error")
	// ErrUnknownField 路径中的字段不存在，或试图穿过非结构体字段
	ErrUnknownField = errors.New("unknown field")
)

// ========== 标量类型 ==========

// Kind 定宽标量类型标签（与 IDL JSON 中的字符串一致）
type Kind string

const (
	KindU8     Kind = "u8"
	KindI8     Kind = "i8"
	KindU16    Kind = "u16"
	KindI16    Kind = "i16"
	KindU32    Kind = "u32"
	KindI32    Kind = "i32"
	KindU64    Kind = "u64"
	KindI64    Kind = "i64"
	KindU128   Kind = "u128"
	KindI128   Kind = "i128"
	KindF32    Kind = "f32"
	KindF64    Kind = "f64"
	KindBool   Kind = "bool"
	KindPubkey Kind = "publicKey"
)

// scalarWidths 定宽标量的字节宽度表
var scalarWidths = map[Kind]int{
	KindU8:     1,
	KindI8:     1,
	KindBool:   1,
	KindU16:    2,
	KindI16:    2,
	KindU32:    4,
	KindI32:    4,
	KindF32:    4,
	KindU64:    8,
	KindI64:    8,
	KindF64:    8,
	KindU128:   16,
	KindI128:   16,
	KindPubkey: 32,
}

// Width 标量宽度；非标量返回 ok=false
func (k Kind) Width() (int, bool) {
	w, ok := scalarWidths[k]
	return w, ok
}

// dynamicKinds 合法出现在 IDL 中、但宽度不定的类型标签。
// 遇到时解析通过，宽度计算报 ErrSchema（与只在用到时才失败的行为一致）。
var dynamicKinds = map[string]bool{
	"string": true,
	"bytes":  true,
}

// ========== 类型引用 ==========

// TypeRef 一个字段的类型引用。各字段互斥，按优先级恰好填一个。
type TypeRef struct {
	Kind    Kind      // 定宽标量
	Defined string    // 引用 types 中的自定义类型（{"defined":"X"} 或裸字符串 "X"）
	Array   *ArrayRef // {"array":[elem, n]}
	Option  *TypeRef  // {"option": t}，宽度按内部类型计
	COption *TypeRef  // {"coption": t}，同上
	Tuple   []TypeRef // {"tuple":[...]}
	Dynamic string    // "string"/"bytes"/{"vec":...} 等动态尺寸类型的原始标签
}

// ArrayRef 定长数组
type ArrayRef struct {
	Elem TypeRef
	Len  int
}

// Field 结构体字段
type Field struct {
	Name string
	Type TypeRef
}

// TypeDef types 数组中的自定义类型定义
type TypeDef struct {
	Name     string
	IsEnum   bool
	Fields   []Field   // kind == "struct"
	Variants []Variant // kind == "enum"
}

// Variant 枚举变体。元组式变体的字段 Name 为空。
type Variant struct {
	Name   string
	Fields []Field
}

// ========== 账户与目录 ==========

// AccountType 一种账户的模式：判别码 + 有序字段表
type AccountType struct {
	Name          string
	Discriminator [DiscriminatorLen]byte
	Fields        []Field

	types map[string]*TypeDef // 自定义类型解析表（目录共享）
}

// Catalog 解析完成的 IDL 目录，Parse 之后只读
type Catalog struct {
	ProgramName string
	Version     string

	accounts map[string]*AccountType
	order    []string
	types    map[string]*TypeDef
}

// Account 按名取账户模式
func (c *Catalog) Account(name string) (*AccountType, error) {
	at, ok := c.accounts[name]
	if !ok {
		return nil, fmt.Errorf("%w: account %q not found in IDL (have %v)", ErrSchema, name, c.order)
	}
	return at, nil
}

// Accounts 账户名列表（按 IDL 中出现顺序）
func (c *Catalog) Accounts() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Type 按名取自定义类型定义
func (c *Catalog) Type(name string) (*TypeDef, bool) {
	td, ok := c.types[name]
	return td, ok
}

// Discriminator 账户判别码：sha256("account:" + name) 前 8 字节
func Discriminator(accountName string) [DiscriminatorLen]byte {
	sum := utils.Sha256Hash([]byte("account:" + accountName))
	var d [DiscriminatorLen]byte
	copy(d[:], sum[:DiscriminatorLen])
	return d
}

// ========== 解析 ==========

// 原始 JSON 模型
type rawIDL struct {
	Version  string       `json:"version"`
	Name     string       `json:"name"`
	Accounts []rawTypeDef `json:"accounts"`
	Types    []rawTypeDef `json:"types"`
}

type rawTypeDef struct {
	Name string      `json:"name"`
	Type rawTypeDecl `json:"type"`
}

type rawTypeDecl struct {
	Kind     string       `json:"kind"`
	Fields   []rawField   `json:"fields"`
	Variants []rawVariant `json:"variants"`
}

type rawField struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type rawVariant struct {
	Name   string            `json:"name"`
	Fields []json.RawMessage `json:"fields"`
}

// Parse 解析 Anchor 风格 IDL 文档。
// 结构性问题（JSON 非法、缺 accounts、非 struct 账户、未知类型标签）在这里报 ErrSchema；
// 动态尺寸类型只登记不报错，等宽度计算用到时再失败。
func Parse(document []byte) (*Catalog, error) {
	var raw rawIDL
	if err := json.Unmarshal(document, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid IDL JSON: %v", ErrSchema, err)
	}
	if raw.Accounts == nil {
		return nil, fmt.Errorf("%w: IDL does not contain 'accounts'", ErrSchema)
	}

	c := &Catalog{
		ProgramName: raw.Name,
		Version:     raw.Version,
		accounts:    make(map[string]*AccountType, len(raw.Accounts)),
		types:       make(map[string]*TypeDef, len(raw.Types)),
	}

	// 先装自定义类型表，账户字段可能引用
	for _, rt := range raw.Types {
		if rt.Name == "" {
			return nil, fmt.Errorf("%w: unnamed entry in 'types'", ErrSchema)
		}
		td, err := parseTypeDef(rt)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", rt.Name, err)
		}
		if _, dup := c.types[rt.Name]; dup {
			continue // 重复定义保留首个
		}
		c.types[rt.Name] = td
	}

	for _, ra := range raw.Accounts {
		if ra.Name == "" {
			return nil, fmt.Errorf("%w: unnamed entry in 'accounts'", ErrSchema)
		}
		if ra.Type.Kind != "struct" {
			return nil, fmt.Errorf("%w: account %q kind is %q, want struct", ErrSchema, ra.Name, ra.Type.Kind)
		}
		if ra.Type.Fields == nil {
			return nil, fmt.Errorf("%w: account %q has no 'fields'", ErrSchema, ra.Name)
		}
		fields, err := parseFields(ra.Type.Fields)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", ra.Name, err)
		}
		if _, dup := c.accounts[ra.Name]; dup {
			continue
		}
		c.accounts[ra.Name] = &AccountType{
			Name:          ra.Name,
			Discriminator: Discriminator(ra.Name),
			Fields:        fields,
			types:         c.types,
		}
		c.order = append(c.order, ra.Name)
	}

	return c, nil
}

func parseTypeDef(rt rawTypeDef) (*TypeDef, error) {
	switch rt.Type.Kind {
	case "struct":
		fields, err := parseFields(rt.Type.Fields)
		if err != nil {
			return nil, err
		}
		return &TypeDef{Name: rt.Name, Fields: fields}, nil
	case "enum":
		td := &TypeDef{Name: rt.Name, IsEnum: true}
		for _, rv := range rt.Type.Variants {
			v := Variant{Name: rv.Name}
			for _, rf := range rv.Fields {
				f, err := parseVariantField(rf)
				if err != nil {
					return nil, fmt.Errorf("variant %q: %w", rv.Name, err)
				}
				v.Fields = append(v.Fields, f)
			}
			td.Variants = append(td.Variants, v)
		}
		return td, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type kind %q", ErrSchema, rt.Type.Kind)
	}
}

func parseFields(raw []rawField) ([]Field, error) {
	fields := make([]Field, 0, len(raw))
	for i, rf := range raw {
		if rf.Name == "" {
			return nil, fmt.Errorf("%w: field #%d has no name", ErrSchema, i)
		}
		tr, err := parseTypeRef(rf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", rf.Name, err)
		}
		fields = append(fields, Field{Name: rf.Name, Type: tr})
	}
	return fields, nil
}

// parseVariantField 枚举变体字段：{"name":…,"type":…} 的具名形式，或直接就是一个类型（元组变体）
func parseVariantField(raw json.RawMessage) (Field, error) {
	var named rawField
	if err := json.Unmarshal(raw, &named); err == nil && named.Name != "" && len(named.Type) > 0 {
		tr, err := parseTypeRef(named.Type)
		if err != nil {
			return Field{}, err
		}
		return Field{Name: named.Name, Type: tr}, nil
	}
	tr, err := parseTypeRef(raw)
	if err != nil {
		return Field{}, err
	}
	return Field{Type: tr}, nil
}

// parseTypeRef 解析一条类型引用
func parseTypeRef(raw json.RawMessage) (TypeRef, error) {
	if len(raw) == 0 {
		return TypeRef{}, fmt.Errorf("%w: field has no type", ErrSchema)
	}

	// 字符串形式："u64"、"publicKey"、"string"、或自定义类型名
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		k := Kind(s)
		if _, ok := scalarWidths[k]; ok {
			return TypeRef{Kind: k}, nil
		}
		if dynamicKinds[s] {
			return TypeRef{Dynamic: s}, nil
		}
		// 裸字符串引用自定义类型
		return TypeRef{Defined: s}, nil
	}

	// 对象形式
	var obj struct {
		Defined json.RawMessage   `json:"defined"`
		Array   []json.RawMessage `json:"array"`
		Option  json.RawMessage   `json:"option"`
		COption json.RawMessage   `json:"coption"`
		Tuple   []json.RawMessage `json:"tuple"`
		Vec     json.RawMessage   `json:"vec"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return TypeRef{}, fmt.Errorf("%w: unsupported field type %s", ErrSchema, compact(raw))
	}

	switch {
	case obj.Defined != nil:
		var name string
		if err := json.Unmarshal(obj.Defined, &name); err != nil || name == "" {
			return TypeRef{}, fmt.Errorf("%w: invalid 'defined' reference %s", ErrSchema, compact(raw))
		}
		return TypeRef{Defined: name}, nil

	case obj.Array != nil:
		if len(obj.Array) != 2 {
			return TypeRef{}, fmt.Errorf("%w: array type wants [elem, len], got %s", ErrSchema, compact(raw))
		}
		elem, err := parseTypeRef(obj.Array[0])
		if err != nil {
			return TypeRef{}, err
		}
		var n int
		if err := json.Unmarshal(obj.Array[1], &n); err != nil || n < 0 {
			return TypeRef{}, fmt.Errorf("%w: invalid array length %s", ErrSchema, compact(obj.Array[1]))
		}
		return TypeRef{Array: &ArrayRef{Elem: elem, Len: n}}, nil

	case obj.Option != nil:
		inner, err := parseTypeRef(obj.Option)
		if err != nil {
			return TypeRef{}, err
		}
		return TypeRef{Option: &inner}, nil

	case obj.COption != nil:
		inner, err := parseTypeRef(obj.COption)
		if err != nil {
			return TypeRef{}, err
		}
		return TypeRef{COption: &inner}, nil

	case obj.Tuple != nil:
		var elems []TypeRef
		for _, rt := range obj.Tuple {
			e, err := parseTypeRef(rt)
			if err != nil {
				return TypeRef{}, err
			}
			elems = append(elems, e)
		}
		return TypeRef{Tuple: elems}, nil

	case obj.Vec != nil:
		return TypeRef{Dynamic: "vec"}, nil

	default:
		return TypeRef{}, fmt.Errorf("%w: unsupported field type %s", ErrSchema, compact(raw))
	}
}

func compact(raw json.RawMessage) string {
	const max = 64
	s := string(raw)
	if len(s) > max {
		s = s[:max] + "…"
	}
	return s
}
