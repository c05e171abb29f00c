package symbols

import "strings"

// classDelimiters mark share classes or corporate-action annotations embedded
// in defunct-ticker feeds ("GOOG|C", "AAPL+", "A_").
const classDelimiters = "+-=|_"

// Normalize maps a raw ticker token to zero or more canonical uppercase
// tickers. Defunct-ticker feeds are noisy, so this never fails: a token with
// nothing salvageable yields an empty result.
//
// The token is split on whitespace first, since one field may report several
// share classes ("CRDA CRDB"). Each sub-token then drops any "id:" style
// prefix, is truncated at the first class delimiter, loses stray quote
// characters, and is uppercased. Sub-tokens left empty are dropped.
func Normalize(raw string) []string {
	var out []string
	for _, tok := range strings.Fields(raw) {
		if i := strings.LastIndexByte(tok, ':'); i >= 0 {
			tok = tok[i+1:]
		}
		if i := strings.IndexAny(tok, classDelimiters); i >= 0 {
			tok = tok[:i]
		}
		tok = strings.Map(func(r rune) rune {
			if r == '"' || r == '\'' {
				return -1
			}
			return r
		}, tok)
		tok = strings.ToUpper(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
