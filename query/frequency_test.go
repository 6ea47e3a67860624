package query_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solscan/idl"
	"solscan/query"
	"solscan/types"
	"solscan/utils"
)

// custodyData 构造 Custody 账户数据：8 字节判别码 + pool + decimals + isStable + owned + ratios
func custodyData(discrim []byte, pool [32]byte, decimals byte, stable byte, owned uint64) []byte {
	data := make([]byte, 54)
	copy(data[0:8], discrim)
	copy(data[8:40], pool[:])
	data[40] = decimals
	data[41] = stable
	binary.LittleEndian.PutUint64(data[42:50], owned)
	return data
}

func decimalsAccounts(t *testing.T, values ...byte) []types.ProgramAccount {
	t.Helper()
	at := custodyType(t)
	out := make([]types.ProgramAccount, 0, len(values))
	for _, v := range values {
		out = append(out, types.ProgramAccount{
			Pubkey: "acct",
			Data:   custodyData(at.Discriminator[:], [32]byte{}, v, 0, 0),
		})
	}
	return out
}

func TestTallyCountDescFirstAppearance(t *testing.T) {
	at := custodyType(t)

	// 取值序列 A A B A C B → (A,3) (B,2) (C,1)
	accounts := decimalsAccounts(t, 7, 7, 9, 7, 3, 9)
	freq, err := query.Tally(accounts, at, "decimals")
	require.NoError(t, err)

	assert.Equal(t, 6, freq.Total)
	assert.Equal(t, 0, freq.Skipped)
	require.Len(t, freq.Entries, 3)
	assert.Equal(t, uint64(7), freq.Entries[0].Value.Uint)
	assert.Equal(t, 3, freq.Entries[0].Count)
	assert.Equal(t, uint64(9), freq.Entries[1].Value.Uint)
	assert.Equal(t, 2, freq.Entries[1].Count)
	assert.Equal(t, uint64(3), freq.Entries[2].Value.Uint)
	assert.Equal(t, 1, freq.Entries[2].Count)
}

func TestTallyTieKeepsFirstSeen(t *testing.T) {
	at := custodyType(t)

	// 5 与 7 各出现两次，先出现的 5 排前面
	freq, err := query.Tally(decimalsAccounts(t, 5, 5, 7, 7), at, "decimals")
	require.NoError(t, err)
	require.Len(t, freq.Entries, 2)
	assert.Equal(t, uint64(5), freq.Entries[0].Value.Uint)
	assert.Equal(t, uint64(7), freq.Entries[1].Value.Uint)

	// 反过来先出现 7
	freq, err = query.Tally(decimalsAccounts(t, 7, 7, 5, 5), at, "decimals")
	require.NoError(t, err)
	require.Len(t, freq.Entries, 2)
	assert.Equal(t, uint64(7), freq.Entries[0].Value.Uint)
}

func TestTallyEmptyInput(t *testing.T) {
	at := custodyType(t)

	freq, err := query.Tally(nil, at, "owned")
	require.NoError(t, err)
	assert.Equal(t, 0, freq.Total)
	assert.Equal(t, 0, freq.Skipped)
	assert.Empty(t, freq.Entries)
}

func TestTallySkipsShortAccounts(t *testing.T) {
	at := custodyType(t)

	accounts := decimalsAccounts(t, 7, 7)
	accounts = append(accounts, types.ProgramAccount{Pubkey: "short", Data: make([]byte, 10)})
	accounts = append(accounts, types.ProgramAccount{Pubkey: "empty"})

	freq, err := query.Tally(accounts, at, "decimals")
	require.NoError(t, err)
	assert.Equal(t, 2, freq.Total)
	assert.Equal(t, 2, freq.Skipped)
	require.Len(t, freq.Entries, 1)
	assert.Equal(t, 2, freq.Entries[0].Count)
}

func TestTallyPubkeyField(t *testing.T) {
	at := custodyType(t)

	const keyA = "BUvduFTd2sWFagCunBPLupG8fBTJqweLw9DuhruNFSCm"
	const keyB = "PERPHjGBqRHArX4DySjwM6UJHiR3sWAatqfdBS2qQJu"
	var poolA, poolB [32]byte
	rawA, err := utils.DecodePubkey(keyA)
	require.NoError(t, err)
	rawB, err := utils.DecodePubkey(keyB)
	require.NoError(t, err)
	copy(poolA[:], rawA)
	copy(poolB[:], rawB)

	accounts := []types.ProgramAccount{
		{Pubkey: "1", Data: custodyData(at.Discriminator[:], poolA, 0, 0, 0)},
		{Pubkey: "2", Data: custodyData(at.Discriminator[:], poolB, 0, 0, 0)},
		{Pubkey: "3", Data: custodyData(at.Discriminator[:], poolA, 0, 0, 0)},
	}
	freq, err := query.Tally(accounts, at, "pool")
	require.NoError(t, err)
	require.Len(t, freq.Entries, 2)
	assert.Equal(t, keyA, freq.Entries[0].Value.String())
	assert.Equal(t, 2, freq.Entries[0].Count)
	assert.Equal(t, keyB, freq.Entries[1].Value.String())
}

func TestTallyBadPath(t *testing.T) {
	at := custodyType(t)

	_, err := query.Tally(nil, at, "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, idl.ErrUnknownField)

	_, err = query.Tally(nil, at, "ratios")
	require.Error(t, err)
	assert.ErrorIs(t, err, idl.ErrSchema)
}

func TestTallyTop(t *testing.T) {
	at := custodyType(t)

	freq, err := query.Tally(decimalsAccounts(t, 1, 1, 1, 2, 2, 3), at, "decimals")
	require.NoError(t, err)
	require.Len(t, freq.Entries, 3)

	assert.Len(t, freq.Top(2), 2)
	assert.Equal(t, uint64(1), freq.Top(2)[0].Value.Uint)
	assert.Len(t, freq.Top(0), 3)
	assert.Len(t, freq.Top(-1), 3)
	assert.Len(t, freq.Top(10), 3)
	assert.Len(t, freq.Top(3), 3)
}
