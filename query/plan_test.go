package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solscan/codec"
	"solscan/idl"
	"solscan/query"
	"solscan/utils"
)

// miniIDL 查询测试夹具：pool=8 decimals=40 isStable=41 owned=42（绝对偏移）
const miniIDL = `{"accounts": [{"name": "Custody", "type": {"kind": "struct", "fields": [
  {"name": "pool", "type": "publicKey"},
  {"name": "decimals", "type": "u8"},
  {"name": "isStable", "type": "bool"},
  {"name": "owned", "type": "u64"},
  {"name": "ratios", "type": {"array": ["u8", 4]}}
]}}]}`

const testProgramID = "PERPHjGBqRHArX4DySjwM6UJHiR3sWAatqfdBS2qQJu"

func custodyType(t *testing.T) *idl.AccountType {
	t.Helper()
	cat, err := idl.Parse([]byte(miniIDL))
	require.NoError(t, err)
	at, err := cat.Account("Custody")
	require.NoError(t, err)
	return at
}

func TestPlanDiscriminatorOnly(t *testing.T) {
	at := custodyType(t)

	req, bound, err := query.Plan(testProgramID, at, nil)
	require.NoError(t, err)
	assert.Empty(t, bound)

	// 无约束时只剩判别码过滤
	require.Len(t, req.Filters, 1)
	assert.Equal(t, 0, req.Filters[0].Offset)
	assert.Equal(t, at.Discriminator[:], req.Filters[0].Bytes)
	assert.Equal(t, testProgramID, req.ProgramID)
	assert.Equal(t, "Custody", req.AccountName)
}

func TestPlanOneFilterPerConstraint(t *testing.T) {
	at := custodyType(t)

	cs := []query.Constraint{
		{Path: "isStable", Value: "true"},
		{Path: "owned", Value: "100"},
	}
	req, bound, err := query.Plan(testProgramID, at, cs)
	require.NoError(t, err)
	require.Len(t, bound, 2)

	// 首条恒为判别码过滤，其后每条约束恰好一条过滤器
	require.Len(t, req.Filters, 1+len(cs))
	assert.Equal(t, 0, req.Filters[0].Offset)
	assert.Equal(t, at.Discriminator[:], req.Filters[0].Bytes)

	assert.Equal(t, 41, req.Filters[1].Offset)
	assert.Equal(t, []byte{0x01}, req.Filters[1].Bytes)

	assert.Equal(t, 42, req.Filters[2].Offset)
	assert.Len(t, req.Filters[2].Bytes, 8)

	// 编译结果与过滤器一一对应
	for i, b := range bound {
		assert.Equal(t, b.Filter, req.Filters[i+1])
		assert.Equal(t, b.Loc.Offset, b.Filter.Offset)
	}
}

func TestPlanFailsFast(t *testing.T) {
	at := custodyType(t)

	t.Run("unknown field", func(t *testing.T) {
		_, _, err := query.Plan(testProgramID, at, []query.Constraint{{Path: "nope", Value: "1"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, idl.ErrUnknownField)
	})

	t.Run("bad value", func(t *testing.T) {
		_, _, err := query.Plan(testProgramID, at, []query.Constraint{{Path: "owned", Value: "lots"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, codec.ErrValueParse)
	})

	t.Run("out of range value", func(t *testing.T) {
		_, _, err := query.Plan(testProgramID, at, []query.Constraint{{Path: "decimals", Value: "300"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, codec.ErrValueParse)
	})

	t.Run("non-scalar target", func(t *testing.T) {
		_, _, err := query.Plan(testProgramID, at, []query.Constraint{{Path: "ratios", Value: "1"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, codec.ErrValueParse)
	})

	t.Run("bad pubkey value", func(t *testing.T) {
		_, _, err := query.Plan(testProgramID, at, []query.Constraint{{Path: "pool", Value: "0OIl"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, codec.ErrValueParse)
	})

	t.Run("bad program id", func(t *testing.T) {
		_, _, err := query.Plan("not-base58!!", at, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, utils.ErrInvalidPubkey)
	})
}

func TestCompilePubkeyConstraint(t *testing.T) {
	at := custodyType(t)

	const key = "BUvduFTd2sWFagCunBPLupG8fBTJqweLw9DuhruNFSCm"
	bound, err := query.Compile(at, []query.Constraint{{Path: "pool", Value: key}})
	require.NoError(t, err)
	require.Len(t, bound, 1)

	assert.Equal(t, 8, bound[0].Filter.Offset)
	assert.Len(t, bound[0].Filter.Bytes, 32)

	raw, err := utils.DecodePubkey(key)
	require.NoError(t, err)
	assert.Equal(t, raw, bound[0].Filter.Bytes)
}
