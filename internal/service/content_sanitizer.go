package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// contentSanitizer cleans teacher-authored text before it is shown to students.
type contentSanitizer struct {
	titles *bluemonday.Policy
	bodies *bluemonday.Policy
}

func newContentSanitizer() contentSanitizer {
	return contentSanitizer{
		titles: bluemonday.StrictPolicy(),
		bodies: bluemonday.UGCPolicy(),
	}
}

func (s contentSanitizer) title(input string) string {
	return strings.TrimSpace(s.titles.Sanitize(input))
}

func (s contentSanitizer) body(input string) string {
	return strings.TrimSpace(s.bodies.Sanitize(input))
}
