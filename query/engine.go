// query/engine.go
package query

import (
	"context"
	"fmt"

	"solscan/config"
	"solscan/idl"
	"solscan/interfaces"
	"solscan/logs"
	"solscan/stats"
	"solscan/types"
)

// Scanner 查询执行器：规划 → 拉取 → 本地复核。
// 过滤器一律下推给传输层，但节点端过滤不可信，
// 拉回之后总会在本地对全部过滤器再核一遍。
type Scanner struct {
	transport interfaces.Transport
	cfg       config.QueryConfig
	stats     *stats.Stats
}

func NewScanner(transport interfaces.Transport, cfg config.QueryConfig, st *stats.Stats) *Scanner {
	if st == nil {
		st = stats.NewStats()
	}
	if cfg.MatchWorkerCount <= 0 {
		cfg.MatchWorkerCount = 1
	}
	return &Scanner{transport: transport, cfg: cfg, stats: st}
}

// Result 一次扫描的结果
type Result struct {
	Request  *types.QueryRequest
	Bound    []BoundConstraint
	Accounts []types.ProgramAccount // 通过复核的账户，保持传输层顺序
}

// Scan 执行一次账户扫描。
// 规划错误（未知字段、非法值、非法程序地址）在任何拉取之前返回；
// 单账户问题（数据过短、判别码不符）只记入计数器，不中断扫描。
func (s *Scanner) Scan(ctx context.Context, programID string, at *idl.AccountType, cs []Constraint) (*Result, error) {
	if s.cfg.MaxConstraints > 0 && len(cs) > s.cfg.MaxConstraints {
		return nil, fmt.Errorf("too many constraints: %d (limit %d)", len(cs), s.cfg.MaxConstraints)
	}

	req, bound, err := Plan(programID, at, cs)
	if err != nil {
		return nil, err
	}

	if s.transport.SupportsFilters() {
		logs.Debug("scan %s: pushing %d memcmp filters to the node", at.Name, len(req.Filters))
	} else {
		logs.Debug("scan %s: transport has no filter pushdown, all %d filters evaluated locally", at.Name, len(req.Filters))
	}

	accounts, err := s.transport.FetchProgramAccounts(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch program accounts: %w", err)
	}
	s.stats.RecordScan(stats.CounterFetched, uint64(len(accounts)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 跳过原因统计（判别码维度：过短 / 不符）
	discrim := req.Filters[0]
	for i := range accounts {
		if len(accounts[i].Data) < idl.DiscriminatorLen {
			s.stats.RecordScan(stats.CounterSkipShort, 1)
		} else if !discrim.Match(accounts[i].Data) {
			s.stats.RecordScan(stats.CounterSkipMismatch, 1)
		}
	}

	idx := verifyAccounts(accounts, req.Filters, s.cfg.MatchWorkerCount)
	matched := make([]types.ProgramAccount, 0, len(idx))
	for _, i := range idx {
		matched = append(matched, accounts[i])
	}
	s.stats.RecordScan(stats.CounterMatched, uint64(len(matched)))
	logs.Info("scan %s: fetched %d accounts, %d matched", at.Name, len(accounts), len(matched))

	return &Result{Request: req, Bound: bound, Accounts: matched}, nil
}

// Stats 计数器（CLI 结束时汇总输出用）
func (s *Scanner) Stats() *stats.Stats {
	return s.stats
}
