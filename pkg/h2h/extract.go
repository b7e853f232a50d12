package h2h

import "strings"

const (
	// SectionMarker starts the head-to-head part of a match page
	SectionMarker = "Head-to-Head"
	// NoticeMarker starts the disclaimer that follows the fixtures
	NoticeMarker = "*IMPORTANT NOTICE"
)

// ExtractSection returns the page text from the first SectionMarker onwards with any trailing
// notice removed. ok is false when the page has no head-to-head section.
func ExtractSection(pageText string) (section string, ok bool) {
	start := strings.Index(pageText, SectionMarker)
	if start < 0 {
		return "", false
	}
	section = pageText[start:]
	if end := strings.Index(section, NoticeMarker); end >= 0 {
		section = section[:end]
	}
	return section, true
}
