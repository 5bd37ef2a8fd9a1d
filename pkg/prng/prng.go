// Package prng 提供可复现的确定性伪随机数
//
// 同一 (slug, seed) 输入产生同一浮点序列，保证生成流程可重放。
// 测试只应依赖可复现性，不应依赖具体算法输出。
package prng

import (
	"hash/fnv"
)

// LCG 参数（Numerical Recipes）
const (
	lcgMultiplier uint64 = 6364136223846793005
	lcgIncrement  uint64 = 1442695040888963407
)

// Source 确定性伪随机数源
type Source struct {
	state uint64
}

// New 以数值种子创建随机源
func New(seed uint64) *Source {
	// 零种子会退化为固定序列开头，混入增量避开
	return &Source{state: seed ^ lcgIncrement}
}

// NewFromSlug 以 slug 哈希与种子混合后创建随机源
func NewFromSlug(slug string, seed uint64) *Source {
	h := fnv.New64a()
	_, _ = h.Write([]byte(slug))
	return New(h.Sum64() ^ (seed * lcgMultiplier))
}

// next 推进一步 LCG 状态
func (s *Source) next() uint64 {
	s.state = s.state*lcgMultiplier + lcgIncrement
	return s.state
}

// Float64 返回 [0, 1) 区间的下一个浮点数
func (s *Source) Float64() float64 {
	// 取高 53 位，保证均匀覆盖 float64 尾数
	return float64(s.next()>>11) / float64(1<<53)
}

// Intn 返回 [0, n) 区间的下一个整数；n <= 0 时返回 0
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Float64() * float64(n))
}

// Pick 从候选列表中确定性地选取一项；空列表返回零值
func Pick[T any](s *Source, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[s.Intn(len(items))]
}
