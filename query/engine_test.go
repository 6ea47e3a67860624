package query_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solscan/config"
	"solscan/idl"
	"solscan/query"
	"solscan/stats"
	"solscan/types"
)

// fakeTransport 固定返回一批账户，并记录收到的请求
type fakeTransport struct {
	accounts []types.ProgramAccount
	err      error
	filtered bool
	requests []*types.QueryRequest
}

func (f *fakeTransport) FetchProgramAccounts(ctx context.Context, req *types.QueryRequest) ([]types.ProgramAccount, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts, nil
}

func (f *fakeTransport) SupportsFilters() bool { return f.filtered }

func newTestScanner(ft *fakeTransport) *query.Scanner {
	cfg := config.DefaultConfig().Query
	return query.NewScanner(ft, cfg, stats.NewStats())
}

func TestScanMatchesConstraints(t *testing.T) {
	at := custodyType(t)
	discrim := at.Discriminator[:]
	other := idl.Discriminator("Other")

	ft := &fakeTransport{
		filtered: true,
		accounts: []types.ProgramAccount{
			{Pubkey: "hit-1", Data: custodyData(discrim, [32]byte{}, 6, 0x01, 100), Lamports: 10},
			{Pubkey: "wrong-owned", Data: custodyData(discrim, [32]byte{}, 6, 0x01, 99)},
			{Pubkey: "not-stable", Data: custodyData(discrim, [32]byte{}, 6, 0x00, 100)},
			{Pubkey: "wrong-discrim", Data: custodyData(other[:], [32]byte{}, 6, 0x01, 100)},
			{Pubkey: "short", Data: []byte{0x01, 0x02, 0x03}},
			{Pubkey: "hit-2", Data: custodyData(discrim, [32]byte{}, 9, 0x01, 100), Lamports: 20},
		},
	}
	s := newTestScanner(ft)

	// 1、两条约束取交集
	res, err := s.Scan(context.Background(), testProgramID, at, []query.Constraint{
		{Path: "isStable", Value: "true"},
		{Path: "owned", Value: "100"},
	})
	require.NoError(t, err)

	// 2、只有同时满足两条约束且判别码正确的账户保留，顺序与传输层一致
	require.Len(t, res.Accounts, 2)
	assert.Equal(t, "hit-1", res.Accounts[0].Pubkey)
	assert.Equal(t, "hit-2", res.Accounts[1].Pubkey)

	// 3、请求带上了判别码 + 两条约束的全部过滤器
	require.Len(t, ft.requests, 1)
	require.Len(t, ft.requests[0].Filters, 3)
	assert.Equal(t, discrim, ft.requests[0].Filters[0].Bytes)

	// 4、计数器：拉取 6、命中 2、过短 1、判别码不符 1
	st := s.Stats()
	assert.Equal(t, uint64(6), st.ScanCount(stats.CounterFetched))
	assert.Equal(t, uint64(2), st.ScanCount(stats.CounterMatched))
	assert.Equal(t, uint64(1), st.ScanCount(stats.CounterSkipShort))
	assert.Equal(t, uint64(1), st.ScanCount(stats.CounterSkipMismatch))
}

func TestScanReverifiesUntrustedTransport(t *testing.T) {
	at := custodyType(t)
	discrim := at.Discriminator[:]

	// 传输层谎报：声称支持过滤却返回不匹配的账户
	ft := &fakeTransport{
		filtered: true,
		accounts: []types.ProgramAccount{
			{Pubkey: "liar", Data: custodyData(discrim, [32]byte{}, 0, 0x00, 0)},
			{Pubkey: "honest", Data: custodyData(discrim, [32]byte{}, 0, 0x01, 0)},
		},
	}
	s := newTestScanner(ft)

	res, err := s.Scan(context.Background(), testProgramID, at, []query.Constraint{
		{Path: "isStable", Value: "true"},
	})
	require.NoError(t, err)
	require.Len(t, res.Accounts, 1)
	assert.Equal(t, "honest", res.Accounts[0].Pubkey)
}

func TestScanBoolMatchIsByteExact(t *testing.T) {
	at := custodyType(t)
	discrim := at.Discriminator[:]

	// 0x02 解码是 true，但字节比较不等于 0x01，不算命中
	ft := &fakeTransport{
		accounts: []types.ProgramAccount{
			{Pubkey: "canonical", Data: custodyData(discrim, [32]byte{}, 0, 0x01, 0)},
			{Pubkey: "truthy", Data: custodyData(discrim, [32]byte{}, 0, 0x02, 0)},
		},
	}
	s := newTestScanner(ft)

	res, err := s.Scan(context.Background(), testProgramID, at, []query.Constraint{
		{Path: "isStable", Value: "true"},
	})
	require.NoError(t, err)
	require.Len(t, res.Accounts, 1)
	assert.Equal(t, "canonical", res.Accounts[0].Pubkey)
}

func TestScanFailsBeforeFetch(t *testing.T) {
	at := custodyType(t)
	ctx := context.Background()

	t.Run("unknown field", func(t *testing.T) {
		ft := &fakeTransport{}
		_, err := newTestScanner(ft).Scan(ctx, testProgramID, at, []query.Constraint{{Path: "nope", Value: "1"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, idl.ErrUnknownField)
		assert.Empty(t, ft.requests)
	})

	t.Run("bad value", func(t *testing.T) {
		ft := &fakeTransport{}
		_, err := newTestScanner(ft).Scan(ctx, testProgramID, at, []query.Constraint{{Path: "owned", Value: "ten"}})
		require.Error(t, err)
		assert.Empty(t, ft.requests)
	})

	t.Run("bad program id", func(t *testing.T) {
		ft := &fakeTransport{}
		_, err := newTestScanner(ft).Scan(ctx, "***", at, nil)
		require.Error(t, err)
		assert.Empty(t, ft.requests)
	})

	t.Run("too many constraints", func(t *testing.T) {
		ft := &fakeTransport{}
		cfg := config.DefaultConfig().Query
		cfg.MaxConstraints = 1
		s := query.NewScanner(ft, cfg, nil)
		_, err := s.Scan(ctx, testProgramID, at, []query.Constraint{
			{Path: "owned", Value: "1"},
			{Path: "decimals", Value: "2"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too many constraints")
		assert.Empty(t, ft.requests)
	})
}

func TestScanTransportError(t *testing.T) {
	at := custodyType(t)

	wantErr := errors.New("connection refused")
	ft := &fakeTransport{err: wantErr}
	_, err := newTestScanner(ft).Scan(context.Background(), testProgramID, at, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestScanWithoutPushdown(t *testing.T) {
	at := custodyType(t)
	discrim := at.Discriminator[:]

	// 传输层不支持下推时结果不变，全靠本地过滤
	ft := &fakeTransport{
		filtered: false,
		accounts: []types.ProgramAccount{
			{Pubkey: "hit", Data: custodyData(discrim, [32]byte{}, 3, 0x01, 7)},
			{Pubkey: "miss", Data: custodyData(discrim, [32]byte{}, 3, 0x00, 7)},
		},
	}
	s := newTestScanner(ft)

	res, err := s.Scan(context.Background(), testProgramID, at, []query.Constraint{
		{Path: "isStable", Value: "true"},
	})
	require.NoError(t, err)
	require.Len(t, res.Accounts, 1)
	assert.Equal(t, "hit", res.Accounts[0].Pubkey)
}

func TestScanDiscriminatorOnlyKeepsEverythingValid(t *testing.T) {
	at := custodyType(t)
	discrim := at.Discriminator[:]

	ft := &fakeTransport{
		accounts: []types.ProgramAccount{
			{Pubkey: "a", Data: custodyData(discrim, [32]byte{}, 1, 0, 0)},
			{Pubkey: "b", Data: custodyData(discrim, [32]byte{}, 2, 1, 5)},
		},
	}
	s := newTestScanner(ft)

	res, err := s.Scan(context.Background(), testProgramID, at, nil)
	require.NoError(t, err)
	assert.Len(t, res.Accounts, 2)
	assert.Empty(t, res.Bound)
}
