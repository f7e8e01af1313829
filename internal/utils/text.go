package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const WordsPerMinute = 200

var scriptBlock = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)

// WordCount counts whitespace separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// ReadTime is the reading time in minutes, rounded up.
func ReadTime(content string) int {
	return int(math.Ceil(float64(WordCount(content)) / WordsPerMinute))
}

// Capitalize upper-cases the first letter and leaves the rest as is.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// StripScripts removes <script> blocks. It is not a sanitizer.
func StripScripts(s string) string {
	return scriptBlock.ReplaceAllString(s, "")
}

// RuneLen is the length limit unit used for user input.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// ParseID parses a positive numeric id.
func ParseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}
