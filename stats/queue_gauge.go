package stats

// QueueGauge 队列通道的瞬时水位（缓存写队列的背压观测用）
type QueueGauge struct {
	Name   string `json:"name"`   // 通道名称
	Module string `json:"module"` // 所属模块
	Len    int    `json:"len"`    // 当前积压条数
	Cap    int    `json:"cap"`    // 通道容量
}

// Usage 使用率 len/cap，容量为 0 时返回 0
func (g QueueGauge) Usage() float64 {
	if g.Cap <= 0 {
		return 0
	}
	return float64(g.Len) / float64(g.Cap)
}
