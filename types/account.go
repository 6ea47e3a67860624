package types

// ProgramAccount 从节点拉取的账户快照
type ProgramAccount struct {
	Pubkey     string // base58 账户地址
	Data       []byte // 账户原始数据（含 8 字节判别码头部）
	Lamports   uint64 // 余额（lamports）
	Owner      string // base58 所属程序地址
	Executable bool   // 是否为可执行账户
	RentEpoch  uint64 // 租金纪元
}

// DataLen 账户数据长度
func (a *ProgramAccount) DataLen() int {
	return len(a.Data)
}
