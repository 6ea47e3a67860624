// query/frequency.go
package query

import (
	"fmt"
	"sort"

	"solscan/codec"
	"solscan/idl"
	"solscan/types"
)

// FrequencyEntry 一个取值及其出现次数
type FrequencyEntry struct {
	Value codec.Value
	Count int
}

// Frequency 某字段在匹配集里的取值分布
type Frequency struct {
	Path    string
	Total   int              // 成功解码的账户数
	Skipped int              // 数据过短被跳过的账户数
	Entries []FrequencyEntry // 次数降序，同次数按先出现顺序
}

// Top 前 k 条；k<=0 或超出范围时返回整表
func (f *Frequency) Top(k int) []FrequencyEntry {
	if k <= 0 || k >= len(f.Entries) {
		return f.Entries
	}
	return f.Entries[:k]
}

// Tally 统计 path 字段在账户集中的取值分布。
// 路径不可解析 → ErrUnknownField / ErrSchema（整体失败）；
// 目标不是定宽标量 → ErrSchema；
// 单个账户数据过短只跳过并计数。空输入得到空表。
// 取值按编码字节聚合，浮点因此按位分桶。
func Tally(accounts []types.ProgramAccount, at *idl.AccountType, path string) (*Frequency, error) {
	loc, err := at.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("interest %q: %w", path, err)
	}
	if !loc.Scalar() {
		return nil, fmt.Errorf("%w: interest %q is not a fixed-width scalar field", idl.ErrSchema, path)
	}

	freq := &Frequency{Path: path}
	index := make(map[string]int) // 编码字节 → Entries 下标

	for i := range accounts {
		data := accounts[i].Data
		if loc.Offset < 0 || loc.Offset+loc.Width > len(data) {
			freq.Skipped++
			continue
		}
		key := string(data[loc.Offset : loc.Offset+loc.Width])
		if pos, ok := index[key]; ok {
			freq.Entries[pos].Count++
			freq.Total++
			continue
		}
		v, err := codec.Decode(data, loc.Offset, loc.Kind)
		if err != nil {
			freq.Skipped++
			continue
		}
		index[key] = len(freq.Entries)
		freq.Entries = append(freq.Entries, FrequencyEntry{Value: v, Count: 1})
		freq.Total++
	}

	// SliceStable 保证同次数条目维持先出现顺序
	sort.SliceStable(freq.Entries, func(i, j int) bool {
		return freq.Entries[i].Count > freq.Entries[j].Count
	})
	return freq, nil
}
