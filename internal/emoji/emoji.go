// Package emoji validates emoji input used for group icons.
package emoji

import "github.com/rivo/uniseg"

// IsSingleEmoji reports whether s is exactly one emoji grapheme cluster.
// Combined sequences (families, flags, skin tones) count as one.
func IsSingleEmoji(s string) bool {
	if s == "" {
		return false
	}
	gr := uniseg.NewGraphemes(s)
	if !gr.Next() {
		return false
	}
	cluster := gr.Runes()
	if gr.Next() {
		return false
	}
	for _, r := range cluster {
		if isEmojiRune(r) {
			return true
		}
	}
	return false
}

// isEmojiRune covers the Unicode blocks emoji are drawn from. Plain ASCII
// and alphabetic input fall outside every range.
func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs, emoticons, symbols
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
		return true
	case r >= 0x2190 && r <= 0x21FF: // arrows
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // misc symbols and arrows
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r == 0x00A9 || r == 0x00AE: // copyright, registered
		return true
	}
	return false
}
