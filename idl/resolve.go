// idl/resolve.go
// 偏移解析：路径 → 账户数据内的绝对偏移。
// 偏移 = 头部 8 字节 + 每层中位于目标字段之前的兄弟字段宽度之和。
// 只累加目标之前的兄弟，目标之后的字段（可能含动态类型）永远不会被算宽。
package idl

import (
	"fmt"
	"strings"
)

// maxTypeDepth 自定义类型嵌套深度上限，超过视为循环引用
const maxTypeDepth = 32

// Loc 路径解析结果
type Loc struct {
	Offset int  // 账户数据内的绝对偏移（含 8 字节判别码头部）
	Width  int  // 字段宽度（字节）
	Kind   Kind // 定宽标量类型；数组/结构体/枚举等非标量叶子为 ""
}

// Scalar 叶子是否为可解码的定宽标量
func (l Loc) Scalar() bool {
	return l.Kind != ""
}

// Descriptor 账户内一个字段叶子（decode 全量提取用）
type Descriptor struct {
	Name   string // 点号路径，如 "pricing.tradeImpactFeeScalar"
	Offset int    // 相对结构体起点的偏移（不含判别码头部）
	Width  int
	Kind   Kind // 为 "" 表示仅占位（数组、枚举等），解码时跳过
}

// Resolve 解析点号路径，返回绝对偏移与叶子类型。
// 路径段不存在或试图穿过非结构体 → ErrUnknownField；
// 路径途经动态尺寸类型或未定义类型 → ErrSchema。
func (at *AccountType) Resolve(path string) (Loc, error) {
	if path == "" {
		return Loc{}, fmt.Errorf("%w: empty path", ErrUnknownField)
	}
	parts := strings.Split(path, ".")
	fields := at.Fields
	offset := 0

	for pi, part := range parts {
		found := false
		for _, f := range fields {
			if f.Name == part {
				found = true
				if pi == len(parts)-1 {
					w, err := at.width(f.Type, 0)
					if err != nil {
						return Loc{}, fmt.Errorf("field %q: %w", path, err)
					}
					return Loc{Offset: DiscriminatorLen + offset, Width: w, Kind: f.Type.Kind}, nil
				}
				nested, err := at.structFields(f.Type)
				if err != nil {
					return Loc{}, fmt.Errorf("path %q at %q: %w", path, part, err)
				}
				fields = nested
				break
			}
			w, err := at.width(f.Type, 0)
			if err != nil {
				return Loc{}, fmt.Errorf("sizing field %q before %q: %w", f.Name, path, err)
			}
			offset += w
		}
		if !found {
			return Loc{}, fmt.Errorf("%w: %q (in path %q of account %s)", ErrUnknownField, part, path, at.Name)
		}
	}
	// 每个路径段要么返回要么下钻，走不到这里
	return Loc{}, fmt.Errorf("%w: %q", ErrUnknownField, path)
}

// Size 结构体总宽度（不含判别码头部）。含动态尺寸字段时报 ErrSchema。
func (at *AccountType) Size() (int, error) {
	total := 0
	for _, f := range at.Fields {
		w, err := at.width(f.Type, 0)
		if err != nil {
			return 0, fmt.Errorf("account %s field %q: %w", at.Name, f.Name, err)
		}
		total += w
	}
	return total, nil
}

// Descriptors 深度优先展开全部字段叶子：嵌套结构体摊平成点号路径，
// 标量叶子可解码，其余（数组、枚举、option、tuple）只占宽度。
// 任一字段宽度不可计时整体报 ErrSchema。
func (at *AccountType) Descriptors() ([]Descriptor, error) {
	var out []Descriptor
	offset := 0
	if err := at.appendDescriptors(&out, at.Fields, "", &offset, 0); err != nil {
		return nil, fmt.Errorf("account %s: %w", at.Name, err)
	}
	return out, nil
}

func (at *AccountType) appendDescriptors(out *[]Descriptor, fields []Field, prefix string, offset *int, depth int) error {
	if depth > maxTypeDepth {
		return fmt.Errorf("%w: type nesting exceeds %d levels", ErrSchema, maxTypeDepth)
	}
	for _, f := range fields {
		name := f.Name
		if prefix != "" {
			name = prefix + "." + f.Name
		}

		// 嵌套结构体：继续摊平
		if f.Type.Defined != "" {
			td, ok := at.types[f.Type.Defined]
			if !ok {
				return fmt.Errorf("%w: unknown defined type %q (field %q)", ErrSchema, f.Type.Defined, name)
			}
			if !td.IsEnum {
				if err := at.appendDescriptors(out, td.Fields, name, offset, depth+1); err != nil {
					return err
				}
				continue
			}
			// 枚举按占位处理
		}

		w, err := at.width(f.Type, 0)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		*out = append(*out, Descriptor{Name: name, Offset: *offset, Width: w, Kind: f.Type.Kind})
		*offset += w
	}
	return nil
}

// structFields 取可下钻的结构体字段表；非结构体报 ErrUnknownField
func (at *AccountType) structFields(t TypeRef) ([]Field, error) {
	if t.Defined == "" {
		return nil, fmt.Errorf("%w: field type is not a nested struct", ErrUnknownField)
	}
	td, ok := at.types[t.Defined]
	if !ok {
		return nil, fmt.Errorf("%w: unknown defined type %q", ErrSchema, t.Defined)
	}
	if td.IsEnum {
		return nil, fmt.Errorf("%w: cannot traverse into enum %q", ErrUnknownField, t.Defined)
	}
	return td.Fields, nil
}

// width 类型宽度（字节）
func (at *AccountType) width(t TypeRef, depth int) (int, error) {
	if depth > maxTypeDepth {
		return 0, fmt.Errorf("%w: type nesting exceeds %d levels", ErrSchema, maxTypeDepth)
	}

	switch {
	case t.Kind != "":
		w, ok := t.Kind.Width()
		if !ok {
			return 0, fmt.Errorf("%w: unknown scalar kind %q", ErrSchema, t.Kind)
		}
		return w, nil

	case t.Dynamic != "":
		return 0, fmt.Errorf("%w: dynamic size type %q is not supported", ErrSchema, t.Dynamic)

	case t.Defined != "":
		td, ok := at.types[t.Defined]
		if !ok {
			return 0, fmt.Errorf("%w: unknown defined type %q", ErrSchema, t.Defined)
		}
		return at.typeDefWidth(td, depth+1)

	case t.Array != nil:
		ew, err := at.width(t.Array.Elem, depth+1)
		if err != nil {
			return 0, err
		}
		return ew * t.Array.Len, nil

	case t.Option != nil:
		// 链上定长布局里 option 不占标志位，宽度按内部类型计
		return at.width(*t.Option, depth+1)

	case t.COption != nil:
		return at.width(*t.COption, depth+1)

	case t.Tuple != nil:
		total := 0
		for _, e := range t.Tuple {
			w, err := at.width(e, depth+1)
			if err != nil {
				return 0, err
			}
			total += w
		}
		return total, nil

	default:
		return 0, fmt.Errorf("%w: empty type reference", ErrSchema)
	}
}

// typeDefWidth 自定义类型宽度：结构体为字段宽度和；枚举为 1 字节判别位 + 最宽变体
func (at *AccountType) typeDefWidth(td *TypeDef, depth int) (int, error) {
	if depth > maxTypeDepth {
		return 0, fmt.Errorf("%w: type nesting exceeds %d levels", ErrSchema, maxTypeDepth)
	}

	if !td.IsEnum {
		total := 0
		for _, f := range td.Fields {
			w, err := at.width(f.Type, depth+1)
			if err != nil {
				return 0, fmt.Errorf("type %q field %q: %w", td.Name, f.Name, err)
			}
			total += w
		}
		return total, nil
	}

	maxVariant := 0
	for _, v := range td.Variants {
		size := 0
		for _, f := range v.Fields {
			w, err := at.width(f.Type, depth+1)
			if err != nil {
				return 0, fmt.Errorf("enum %q variant %q: %w", td.Name, v.Name, err)
			}
			size += w
		}
		if size > maxVariant {
			maxVariant = size
		}
	}
	return 1 + maxVariant, nil
}
