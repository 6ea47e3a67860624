// interfaces/interfaces.go
package interfaces

// 这个包是所有接口的定义中心，其他包实现这些接口但不需要导入这个包

import (
	"context"

	"solscan/types"
)

// Transport 账户获取接口
// rpc.Client 直接实现；db.CachingTransport 在任意 Transport 外加一层快照缓存。
type Transport interface {
	// 拉取程序账户。filters 已含判别码过滤；传输层可把过滤器下推到节点，
	// 也可以忽略（引擎总会在本地复核）。
	FetchProgramAccounts(ctx context.Context, req *types.QueryRequest) ([]types.ProgramAccount, error)

	// 节点端是否执行过滤器下推。false 时引擎按全量结果处理。
	SupportsFilters() bool
}

// AccountStore 本地快照存储接口
type AccountStore interface {
	// 基础操作
	SaveSnapshot(req *types.QueryRequest, accounts []types.ProgramAccount) error
	LoadSnapshot(req *types.QueryRequest) ([]types.ProgramAccount, bool, error)

	// 生命周期管理
	Close()
}
