package recurring

import (
	"regexp"
	"strings"
)

// Bank statement descriptions carry a lot of boilerplate around the actual
// merchant name: processor prefixes, card masking, reference numbers,
// autopay markers. The patterns below strip that noise so that two
// descriptions of the same obligation collapse onto a comparable key.
// Patterns are applied in order against the lowercased input.
var noisePatterns = []*regexp.Regexp{
	// "payment" and anything after it ("ach payment 0921 netflix" rarely
	// carries the merchant after the marker; when it does, the amount and
	// remaining tokens still identify the group).
	regexp.MustCompile(`payment.*$`),
	// Card masking like "SQ ***1234 COFFEE" drops the mask and the rest.
	regexp.MustCompile(`\*{3}.*$`),
	// Long digit runs are references, card fragments, or phone numbers.
	regexp.MustCompile(`\d{4,}`),
	// Scheduling markers and everything that follows them.
	regexp.MustCompile(`(autopay|recurring|subscription).*$`),
	// Standalone filler words.
	regexp.MustCompile(`\b(pmt|payment|to|from)\b`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize canonicalizes a raw transaction description into the key used
// for similarity matching: lowercased, noise tokens removed, whitespace
// collapsed. It is a pure function.
//
// The result may be empty when the description is entirely noise (e.g.
// "PAYMENT 12345678"); such transactions still participate in grouping
// with an empty key.
func Normalize(raw string) string {
	s := strings.ToLower(raw)
	for _, re := range noisePatterns {
		s = re.ReplaceAllString(s, "")
	}
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
