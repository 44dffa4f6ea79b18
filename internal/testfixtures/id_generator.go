package testfixtures

import (
	"strconv"
	"sync/atomic"
)

// IDGenerator hands out "<prefix>-<n>" identifiers starting at 1.
type IDGenerator struct {
	prefix string
	issued atomic.Uint64
}

// NewIDGenerator returns a generator for prefix, "id" when blank.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

func (g *IDGenerator) Next() string {
	n := g.issued.Add(1)
	return g.prefix + "-" + strconv.FormatUint(n, 10)
}

// NextFunc returns g.Next for injection into services. A nil generator
// yields empty ids, which services reject.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Issued reports how many identifiers were handed out.
func (g *IDGenerator) Issued() uint64 {
	return g.issued.Load()
}
