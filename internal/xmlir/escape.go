package xmlir

import (
	"strconv"
	"strings"

	"ipp23/internal/ipp"
)

// decodeEscapes expands every `\ddd` three-digit decimal escape in
// every string-typed argument, applied once globally over the whole
// instruction list right after it is built (spec.md §4.2), matching
// the single `re.findall` escape pass in the Python original rather
// than decoding lazily per use.
func decodeEscapes(instrs []ipp.Instruction) {
	for i := range instrs {
		in := &instrs[i]
		for a := 0; a < in.NArgs; a++ {
			if in.Args[a].Type == ipp.ArgString {
				in.Args[a].Text = decodeEscapeString(in.Args[a].Text)
			}
		}
	}
}

func decodeEscapeString(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+4 <= len(s) && isThreeDigits(s[i+1:i+4]) {
			code, _ := strconv.Atoi(s[i+1 : i+4])
			b.WriteRune(rune(code))
			i += 4
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// isThreeDigits reports whether d is exactly three ASCII decimal
// digits, matching `[0-9]{3}` (the original's `re.findall(r'(\\[0-9]
// {3})+', ...)`). strconv.Atoi alone is too permissive here -- it
// also accepts a leading sign, which would wrongly treat a literal
// `\-12` or `\+12` as an escape.
func isThreeDigits(d string) bool {
	if len(d) != 3 {
		return false
	}
	for i := 0; i < len(d); i++ {
		if d[i] < '0' || d[i] > '9' {
			return false
		}
	}
	return true
}
