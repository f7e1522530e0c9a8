package v1

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Free text typed at the counter is stored without markup. Entities the
// policy escapes are decoded again; output encoding is the renderer's job.
var textPolicy = bluemonday.StrictPolicy()

const maxNoteLength = 500

func sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}
