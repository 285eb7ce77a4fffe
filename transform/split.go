package transform

import (
	"regexp"
	"strings"
)

// Sentinels for responsible-party fields that carry no usable data.
const (
	NoResponsible = "sin responsable"
	NoRM          = "sin RM"
)

var (
	rmPattern       = regexp.MustCompile(`(?i)\bRM[:\s]*([0-9][0-9\.\,]*)`)
	nonDigitPattern = regexp.MustCompile(`[^0-9]`)
)

// SplitResponsible separates a free-text responsible-party field into
// the clean person name and the embedded registration number:
// "Dr. Juan Perez RM: 12.345" -> ("Dr. Juan Perez", "12345").
// Empty input yields both sentinels; input without an RM token keeps
// the full trimmed text and the NoRM sentinel.
func SplitResponsible(raw string) (name, rm string) {
	original := strings.TrimSpace(raw)
	if original == "" {
		return NoResponsible, NoRM
	}

	rm = NoRM
	if m := rmPattern.FindStringSubmatch(original); m != nil {
		rm = nonDigitPattern.ReplaceAllString(m[1], "")
	}

	name = strings.TrimSpace(strings.TrimRight(rmPattern.ReplaceAllString(original, ""), " -"))
	if name == "" {
		name = NoResponsible
	}
	return name, rm
}
