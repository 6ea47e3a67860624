// query/plan.go
// 查询规划：把文本形式的路径=值约束编译成字节过滤器。
// 所有会失败的解析（未知字段、非法值、非法程序地址）都发生在这里，
// 即任何网络请求之前。
package query

import (
	"fmt"

	"solscan/codec"
	"solscan/idl"
	"solscan/types"
	"solscan/utils"
)

// Constraint 一条用户给出的约束：账户内字段路径 = 文本值
type Constraint struct {
	Path  string
	Value string
}

// BoundConstraint 编译后的约束：解析出的位置 + 编码好的比较字节。
// 同一份字节既下推到节点做 memcmp，也在本地逐字节复核。
type BoundConstraint struct {
	Path   string
	Loc    idl.Loc
	Filter types.MemcmpFilter
}

// Compile 编译全部约束。
// 路径不存在 → ErrUnknownField；值编码失败或目标非标量 → ErrValueParse。
func Compile(at *idl.AccountType, cs []Constraint) ([]BoundConstraint, error) {
	bound := make([]BoundConstraint, 0, len(cs))
	for _, c := range cs {
		loc, err := at.Resolve(c.Path)
		if err != nil {
			return nil, fmt.Errorf("constraint %q: %w", c.Path, err)
		}
		if !loc.Scalar() {
			return nil, fmt.Errorf("%w: constraint %q targets a non-scalar field", codec.ErrValueParse, c.Path)
		}
		raw, err := codec.Encode(c.Value, loc.Kind)
		if err != nil {
			return nil, fmt.Errorf("constraint %q: %w", c.Path, err)
		}
		bound = append(bound, BoundConstraint{
			Path:   c.Path,
			Loc:    loc,
			Filter: types.MemcmpFilter{Offset: loc.Offset, Bytes: raw},
		})
	}
	return bound, nil
}

// Plan 生成查询计划：恒有一条判别码过滤（偏移 0），每条约束再加一条。
// 无约束时就是纯判别码搜索。
func Plan(programID string, at *idl.AccountType, cs []Constraint) (*types.QueryRequest, []BoundConstraint, error) {
	if !utils.IsValidPubkey(programID) {
		return nil, nil, fmt.Errorf("invalid program id %q: %w", programID, utils.ErrInvalidPubkey)
	}

	bound, err := Compile(at, cs)
	if err != nil {
		return nil, nil, err
	}

	filters := make([]types.MemcmpFilter, 0, 1+len(bound))
	filters = append(filters, types.MemcmpFilter{Offset: 0, Bytes: at.Discriminator[:]})
	for _, b := range bound {
		filters = append(filters, b.Filter)
	}

	return &types.QueryRequest{
		ProgramID:   programID,
		AccountName: at.Name,
		Filters:     filters,
	}, bound, nil
}
