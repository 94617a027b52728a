package stock_health

import "math/bits"

const twoPow32 = 4294967296.0

// Generator is a small fast chaotic (sfc32) PRNG. A Generator is owned by a
// single analysis and must not be shared between goroutines.
type Generator struct {
	a, b, c, d uint32
}

// NewGenerator creates a generator positioned at the start of the seed's stream.
func NewGenerator(seed Seed) *Generator {
	return &Generator{a: seed[0], b: seed[1], c: seed[2], d: seed[3]}
}

// Next returns the next value in [0,1).
func (g *Generator) Next() float64 {
	t := g.a + g.b + g.d
	g.d++
	g.a = g.b ^ (g.b >> 9)
	g.b = g.c + (g.c << 3)
	g.c = bits.RotateLeft32(g.c, 21) + t

	return float64(t) / twoPow32
}
