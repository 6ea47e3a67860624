package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"solscan/types"
)

func acct(data ...byte) types.ProgramAccount {
	return types.ProgramAccount{Pubkey: "test", Data: data}
}

func TestVerifyAccountsEmptyInput(t *testing.T) {
	got := verifyAccounts(nil, []types.MemcmpFilter{{Offset: 0, Bytes: []byte{1}}}, 4)
	assert.Nil(t, got)
}

func TestVerifyAccountsNoFilters(t *testing.T) {
	accounts := []types.ProgramAccount{acct(1), acct(2), acct(3)}
	got := verifyAccounts(accounts, nil, 4)
	assert.Equal(t, []uint32{0, 1, 2}, got)
}

func TestVerifyAccountsSingleFilter(t *testing.T) {
	accounts := []types.ProgramAccount{
		acct(0xAA, 0x01), // 命中
		acct(0xAA, 0x00), // 字节不同
		acct(0xAB, 0x01), // 首字节不同
		acct(0xAA),       // 长度不足
		acct(0xAA, 0x01), // 命中
	}
	got := verifyAccounts(accounts, []types.MemcmpFilter{{Offset: 0, Bytes: []byte{0xAA, 0x01}}}, 4)
	assert.Equal(t, []uint32{0, 4}, got)
}

func TestVerifyAccountsIntersectsAllFilters(t *testing.T) {
	accounts := []types.ProgramAccount{
		acct(0x01, 0x00, 0x07), // 两条都命中
		acct(0x01, 0x00, 0x08), // 仅第一条
		acct(0x02, 0x00, 0x07), // 仅第二条
		acct(0x01, 0xFF, 0x07), // 两条都命中（中间字节不参与比较）
		acct(0x02, 0x00, 0x08), // 全不命中
	}
	filters := []types.MemcmpFilter{
		{Offset: 0, Bytes: []byte{0x01}},
		{Offset: 2, Bytes: []byte{0x07}},
	}

	// 过滤器之间是交集语义，且保持入参顺序
	got := verifyAccounts(accounts, filters, 4)
	assert.Equal(t, []uint32{0, 3}, got)
}

func TestVerifyAccountsWorkerCountIrrelevant(t *testing.T) {
	accounts := make([]types.ProgramAccount, 0, 64)
	for i := 0; i < 64; i++ {
		accounts = append(accounts, acct(byte(i%4), byte(i%2)))
	}
	filters := []types.MemcmpFilter{
		{Offset: 0, Bytes: []byte{0x01}},
		{Offset: 1, Bytes: []byte{0x01}},
	}

	// 1、并发度不同结果必须一致
	want := verifyAccounts(accounts, filters, 1)
	for _, workers := range []int{2, 4, 8, 32} {
		got := verifyAccounts(accounts, filters, workers)
		assert.Equal(t, want, got, "workers=%d", workers)
	}

	// 2、抽查命中集合：i%4==1 且 i%2==1
	for _, idx := range want {
		assert.Equal(t, byte(1), accounts[idx].Data[0])
		assert.Equal(t, byte(1), accounts[idx].Data[1])
	}
}
