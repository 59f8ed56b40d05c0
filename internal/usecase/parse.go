// File: internal/usecase/parse.go
package usecase

import (
	"strconv"
	"strings"
)

// ParseGroupTopic parses the source answer. Accepted shapes:
//
//	"-1001234567890/123" -> group -1001234567890, topic 123
//	"-1001234567890"     -> group -1001234567890, no topic
//
// Any other shape reports ok=false and the caller re-prompts.
func ParseGroupTopic(text string) (groupID int64, topicID *int, ok bool) {
	parts := strings.Split(strings.TrimSpace(text), "/")
	switch len(parts) {
	case 1:
		g, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return 0, nil, false
		}
		return g, nil, true
	case 2:
		g, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return 0, nil, false
		}
		t, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, nil, false
		}
		return g, &t, true
	default:
		return 0, nil, false
	}
}

// MessageRange is the parsed range answer. All means no explicit bounds;
// otherwise [From, To] inclusive. From > To is a legal empty range.
type MessageRange struct {
	All  bool
	From int
	To   int
}

// ParseMessageRange parses the range answer. Accepted shapes:
//
//	"all"   -> every message (case-insensitive)
//	"1-100" -> inclusive range
//	"50"    -> single message
func ParseMessageRange(text string) (MessageRange, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "all" {
		return MessageRange{All: true}, true
	}
	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		if len(parts) != 2 {
			return MessageRange{}, false
		}
		from, err := strconv.Atoi(parts[0])
		if err != nil {
			return MessageRange{}, false
		}
		to, err := strconv.Atoi(parts[1])
		if err != nil {
			return MessageRange{}, false
		}
		return MessageRange{From: from, To: to}, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return MessageRange{}, false
	}
	return MessageRange{From: n, To: n}, true
}
