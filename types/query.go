package types

import "fmt"

// MemcmpFilter 固定偏移的字节相等过滤器。
// 同一个过滤器既下推到节点（getProgramAccounts memcmp），
// 也在本地对拉回的账户做字节比较。
type MemcmpFilter struct {
	Offset int    // 账户数据内的绝对偏移（含 8 字节判别码头部）
	Bytes  []byte // 期望的字节序列
}

// Match 本地执行：账户数据在 Offset 处是否逐字节等于 Bytes。
// 数据过短视为不匹配（调用方负责计数跳过）。
func (f MemcmpFilter) Match(data []byte) bool {
	if f.Offset < 0 || f.Offset+len(f.Bytes) > len(data) {
		return false
	}
	for i, b := range f.Bytes {
		if data[f.Offset+i] != b {
			return false
		}
	}
	return true
}

func (f MemcmpFilter) String() string {
	return fmt.Sprintf("memcmp{offset=%d, len=%d}", f.Offset, len(f.Bytes))
}

// QueryRequest 一次 getProgramAccounts 查询计划
type QueryRequest struct {
	ProgramID   string         // base58 程序地址
	AccountName string         // 账户类型名（日志与缓存键用）
	Filters     []MemcmpFilter // 下推的过滤器集合（首个恒为判别码过滤）
}
