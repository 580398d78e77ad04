// Package phone validates and finds US-style phone numbers written in the
// fixed DDD-DDD-DDDD shape.
//
// The scanner is brute force: every 12-byte window of the input
// is checked position by position, and the scan advances one byte at a time
// even after a match. Both functions are pure and safe for concurrent use.
package phone

// numberLen is the length of a DDD-DDD-DDDD window.
const numberLen = 12

// IsPhoneNumber reports whether candidate is exactly one DDD-DDD-DDDD number.
// Checks run left to right and stop at the first failing position.
func IsPhoneNumber(candidate string) bool {
	if len(candidate) != numberLen {
		return false
	}
	for i := 0; i < 3; i++ {
		if !isDecimal(candidate[i]) {
			return false
		}
	}
	if candidate[3] != '-' {
		return false
	}
	for i := 4; i < 7; i++ {
		if !isDecimal(candidate[i]) {
			return false
		}
	}
	if candidate[7] != '-' {
		return false
	}
	for i := 8; i < numberLen; i++ {
		if !isDecimal(candidate[i]) {
			return false
		}
	}
	return true
}

// FindPhoneNumbers returns every 12-byte window of text that passes
// IsPhoneNumber, in order of window start. The result is never nil.
func FindPhoneNumbers(text string) []string {
	matches := FindMatches(text)
	numbers := make([]string, 0, len(matches))
	for _, m := range matches {
		numbers = append(numbers, m.Number)
	}
	return numbers
}

// Match is a phone number found in a larger text.
type Match struct {
	Number string `json:"number" yaml:"number"`
	// Offset is the byte offset of the first digit in the scanned text.
	Offset int `json:"offset" yaml:"offset"`
}

// FindMatches is FindPhoneNumbers with byte offsets.
// Overlapping windows are not collapsed: the next window always starts at
// offset+1.
func FindMatches(text string) []Match {
	matches := make([]Match, 0)
	for offset := 0; offset+numberLen <= len(text); offset++ {
		window := text[offset : offset+numberLen]
		if IsPhoneNumber(window) {
			matches = append(matches, Match{Number: window, Offset: offset})
		}
	}
	return matches
}

func isDecimal(c byte) bool {
	return c >= '0' && c <= '9'
}
