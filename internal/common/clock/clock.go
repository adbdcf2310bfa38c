// Package clock 提供可注入的时间源
package clock

import (
	"sync"
	"time"
)

// Clock 时间源
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Real 返回系统时钟
func Real() Clock {
	return realClock{}
}

// FixedClock 固定时间的时钟，可手动推进
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// Fixed 返回固定在 t 的时钟
func Fixed(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now 返回当前固定时间
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set 设置时间
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance 推进时间
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Date 截断到 UTC 零点，预订日期统一使用该形式存储和比较
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today 返回时钟当天的零点
func Today(c Clock) time.Time {
	return Date(c.Now())
}

// DaysBetween 计算 from 到 to 之间的整天数，不足一天的部分舍去
func DaysBetween(from, to time.Time) int {
	return int(Date(to).Sub(Date(from)).Hours() / 24)
}

// ParseDate 解析 YYYY-MM-DD 格式的日期
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
