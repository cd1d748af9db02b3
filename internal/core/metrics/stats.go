package metrics

// Stats 通道吞吐快照
//
// ItemsIn/ItemsOut 为累计写入/读出条目数，RateIn/RateOut 为最近 60 秒
// 的平均速率（条目/秒）。
type Stats struct {
	ItemsIn     int64
	ItemsOut    int64
	Overwritten int64
	RateIn      float64
	RateOut     float64
}
