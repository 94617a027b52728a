package stock_health

import "unicode/utf16"

// Seed is the 128-bit state used to initialise a Generator.
type Seed [4]uint32

// DeriveSeed hashes an identifier into a Seed using cyrb128.
// Characters are folded as UTF-16 code units so the result matches
// clients that hash JavaScript strings.
func DeriveSeed(id string) Seed {
	var (
		h1 uint32 = 1779033703
		h2 uint32 = 3144134277
		h3 uint32 = 1013904242
		h4 uint32 = 2773480762
	)

	for _, unit := range utf16.Encode([]rune(id)) {
		k := uint32(unit)
		h1 = h2 ^ ((h1 ^ k) * 597399067)
		h2 = h3 ^ ((h2 ^ k) * 2869860233)
		h3 = h4 ^ ((h3 ^ k) * 951274213)
		h4 = h1 ^ ((h4 ^ k) * 2716044179)
	}

	h1 = (h3 ^ (h1 >> 18)) * 597399067
	h2 = (h4 ^ (h2 >> 22)) * 2869860233
	h3 = (h1 ^ (h3 >> 17)) * 951274213
	h4 = (h2 ^ (h4 >> 19)) * 2716044179

	h1 ^= h2 ^ h3 ^ h4
	h2 ^= h1
	h3 ^= h1
	h4 ^= h1

	return Seed{h1, h2, h3, h4}
}
