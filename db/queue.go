package db

// WriteTask 一条进入缓存写队列的任务，快照保存与清理共用
type WriteTask struct {
	Key   []byte
	Value []byte // OpDelete 时为 nil
	Op    WriteOp
}

// WriteOp 写操作类别
type WriteOp int

const (
	OpSet WriteOp = iota
	OpDelete
)
