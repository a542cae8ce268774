package aria2

import (
	"regexp"
	"strconv"
	"strings"
)

// unitRe extracts a leading decimal number and an optional K/M/G/T suffix.
// A trailing "iB" or "B" is accepted but does not affect classification.
var unitRe = regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?)\s*([KMGT])?(?:I?B)?`)

// ToBytes converts a human-readable size token such as "12.3MiB", "512KB"
// or "934" into a byte count. This is a best-effort cosmetic conversion:
// empty or unparsable input yields 0, never an error.
func ToBytes(s string) int64 {
	if s == "" {
		return 0
	}

	m := unitRe.FindStringSubmatch(s)
	if m == nil {
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n
		}

		return 0
	}

	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}

	switch strings.ToUpper(m[2]) {
	case "K":
		val *= 1 << 10
	case "M":
		val *= 1 << 20
	case "G":
		val *= 1 << 30
	case "T":
		val *= 1 << 40
	}

	return int64(val)
}
