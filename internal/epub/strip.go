package epub

import (
	"html"
	"regexp"
	"strings"
)

var (
	scriptRe  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headRe    = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	blockRe   = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|blockquote|section|article|tr)>|<br\s*/?>`)
	tagRe     = regexp.MustCompile(`(?s)<[^>]*>`)
	blankRe   = regexp.MustCompile(`\n{3,}`)
	spaceRe   = regexp.MustCompile(`[ \t]+`)
	trailWSRe = regexp.MustCompile(`[ \t]+\n`)
)

// StripTags converts an XHTML chapter document to plain text. Block
// element boundaries become newlines so paragraph structure survives
// for the chunker's paragraph split.
func StripTags(doc string) string {
	text := headRe.ReplaceAllString(doc, "")
	text = scriptRe.ReplaceAllString(text, "")
	text = styleRe.ReplaceAllString(text, "")
	text = blockRe.ReplaceAllString(text, "\n\n")
	text = tagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = spaceRe.ReplaceAllString(text, " ")
	text = trailWSRe.ReplaceAllString(text, "\n")
	text = blankRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// firstTagText returns the text content of the first occurrence of the
// given element, tags stripped, or "" when absent.
func firstTagText(doc, tag string) string {
	re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>(.*?)</` + tag + `>`)
	m := re.FindStringSubmatch(doc)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(m[1], "")))
}
