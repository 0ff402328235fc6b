package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	codeRe = regexp.MustCompile(`^[A-Z0-9]+(?:-[A-Z0-9]+)*$`)
	seqRe  = regexp.MustCompile(`-(\d+)$`)
	wsRe   = regexp.MustCompile(`\s+`)
)

// ParsedCode holds the structured parts of an equipment code such as
// "WLD-MIG-003": the category prefix and the trailing sequence number.
type ParsedCode struct {
	Code   string // normalized full code
	Prefix string // code without the trailing "-NNN", equals Code when absent
	Seq    int    // trailing sequence number, 0 when absent
}

// NormalizeCode canonicalizes a raw equipment code: trims, uppercases, and
// turns internal whitespace into dashes. Fails if the result is empty or
// contains anything outside A-Z, 0-9 and dashes.
func NormalizeCode(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = wsRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "", fmt.Errorf("equipment code is empty")
	}
	if !codeRe.MatchString(s) {
		return "", fmt.Errorf("invalid equipment code: %q", raw)
	}
	if len(s) > 64 {
		return "", fmt.Errorf("equipment code too long: %q", raw)
	}
	return s, nil
}

// ParseCode normalizes a raw code and splits off the trailing sequence
// number, when present.
func ParseCode(raw string) (ParsedCode, error) {
	code, err := NormalizeCode(raw)
	if err != nil {
		return ParsedCode{}, err
	}

	parsed := ParsedCode{Code: code, Prefix: code}
	if loc := seqRe.FindStringSubmatchIndex(code); loc != nil {
		if n, err := strconv.Atoi(code[loc[2]:loc[3]]); err == nil {
			parsed.Seq = n
			parsed.Prefix = code[:loc[0]]
		}
	}
	return parsed, nil
}
