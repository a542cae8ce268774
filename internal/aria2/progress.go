package aria2

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// progressRe matches the structured progress marker aria2c prints on its
// console stream, e.g.
//
//	[#a1b2 10MiB/100MiB(10%) CN:4 DL:1.5MiB ETA:1m0s]
var progressRe = regexp.MustCompile(
	`(?i)\[#([0-9a-f]+)\s+([0-9.\w]+)/([0-9.\w]+)\(([0-9]+)%\)\s+CN:([0-9]+)\s+DL:([0-9.\w]+)\s+ETA:([^\]]+)\]`,
)

// completionPhrases are scanned case-insensitively as a fallback for output
// that signals completion without a structured marker.
var completionPhrases = []string{
	"download complete",
	"completed",
	"download finished",
}

// Progress holds the fields extracted from one progress marker.
type Progress struct {
	GID         string
	Have        int64
	Total       int64
	Percent     int
	Connections int
	Speed       string // Display string as reported, e.g. "1.5MiB"
	ETA         string // Free text as reported, e.g. "1m0s"
}

// ParseProgress scans one output line for a progress marker. It returns
// (nil, nil) when the line carries no marker, and a non-nil error when a
// marker is present but a numeric field does not convert; the caller logs
// the error and keeps its previous values.
func ParseProgress(line string) (*Progress, error) {
	m := progressRe.FindStringSubmatch(line)
	if m == nil {
		return nil, nil
	}

	percent, err := strconv.Atoi(m[4])
	if err != nil {
		return nil, fmt.Errorf("bad percent %q: %w", m[4], err)
	}

	connections, err := strconv.Atoi(m[5])
	if err != nil {
		return nil, fmt.Errorf("bad connection count %q: %w", m[5], err)
	}

	return &Progress{
		GID:         m[1],
		Have:        ToBytes(m[2]),
		Total:       ToBytes(m[3]),
		Percent:     percent,
		Connections: connections,
		Speed:       m[6],
		ETA:         strings.TrimSpace(m[7]),
	}, nil
}

// IsCompletionLine reports whether the line contains terminal "completed"
// phrasing, independent of marker matching.
func IsCompletionLine(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range completionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	return false
}
