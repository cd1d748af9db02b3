package metrics

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// ============================================================================
// RateMeter - 速率计算器
// ============================================================================

// rateWindow 滑动窗口桶数（每桶 1 秒）
const rateWindow = 60

// RateMeter 速率计算器（基于滑动窗口）
//
// 使用 60 个 1 秒桶计算最近 60 秒的平均速率，另外维护累计总量。
type RateMeter struct {
	clock clock.Clock

	mu       sync.RWMutex
	buckets  [rateWindow]int64
	lastIdx  int
	lastTime time.Time
	lastAdd  time.Time
	total    int64
}

// NewRateMeter 创建速率计算器
func NewRateMeter(c clock.Clock) *RateMeter {
	if c == nil {
		c = clock.New()
	}
	now := c.Now()
	return &RateMeter{
		clock:    c,
		lastTime: now,
		lastAdd:  now,
	}
}

// advanceLocked 把窗口推进到当前时间（需要持有锁）
func (r *RateMeter) advanceLocked(now time.Time) {
	elapsed := now.Sub(r.lastTime)
	if elapsed < time.Second {
		return
	}

	seconds := int(elapsed / time.Second)
	if seconds >= rateWindow {
		r.buckets = [rateWindow]int64{}
		r.lastIdx = 0
	} else {
		for i := 0; i < seconds; i++ {
			r.lastIdx = (r.lastIdx + 1) % rateWindow
			r.buckets[r.lastIdx] = 0
		}
	}
	r.lastTime = r.lastTime.Add(time.Duration(seconds) * time.Second)
}

// Add 添加计数到当前桶
func (r *RateMeter) Add(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	r.advanceLocked(now)
	r.buckets[r.lastIdx] += n
	r.total += n
	r.lastAdd = now
}

// Rate 返回最近窗口内的平均速率（每秒）
func (r *RateMeter) Rate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advanceLocked(r.clock.Now())
	var sum int64
	for _, v := range r.buckets {
		sum += v
	}
	return float64(sum) / rateWindow
}

// Total 返回累计总量
func (r *RateMeter) Total() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// Reset 重置速率计算器
func (r *RateMeter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buckets = [rateWindow]int64{}
	r.lastIdx = 0
	r.lastTime = r.clock.Now()
	r.lastAdd = r.lastTime
	r.total = 0
}

// LastUpdate 返回最后一次 Add 的时间
func (r *RateMeter) LastUpdate() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastAdd
}
