package text

import "unicode"

// IsCollapsibleSpace reports spaces, tabs and newlines.
func IsCollapsibleSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

// BreakOpportunities returns the rune indices before which a line may be
// broken: after a run of white space and after a hyphen that follows a
// letter.
func BreakOpportunities(runes []rune) []int {
	var out []int
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		switch {
		case unicode.IsSpace(prev) && !unicode.IsSpace(cur):
			out = append(out, i)
		case prev == '-' && i >= 2 && unicode.IsLetter(runes[i-2]) && !unicode.IsSpace(cur):
			out = append(out, i)
		}
	}
	return out
}

// CollapseWhiteSpace folds runs of white space into one space, as done for
// `white-space: normal` and `nowrap`.
func CollapseWhiteSpace(s string) string {
	out := make([]rune, 0, len(s))
	inSpace := false
	for _, r := range s {
		if IsCollapsibleSpace(r) {
			if !inSpace {
				out = append(out, ' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		out = append(out, r)
	}
	return string(out)
}
