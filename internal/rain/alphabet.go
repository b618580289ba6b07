package rain

// Katakana returns the 96 code points starting at U+30A0. These are
// full-width and need a two-cell box in a terminal.
func Katakana() []rune {
	return runeRange(0x30A0, 96)
}

// HalfwidthKatakana returns U+FF66..U+FF9D, which fit one terminal cell.
func HalfwidthKatakana() []rune {
	return runeRange(0xFF66, 0xFF9D-0xFF66+1)
}

func runeRange(first rune, n int) []rune {
	out := make([]rune, n)
	for i := range out {
		out[i] = first + rune(i)
	}
	return out
}
