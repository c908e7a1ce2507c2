package webserver

import "github.com/microcosm-cc/bluemonday"

// newSanitizer builds the strict policy applied to all user-authored bodies
// before they are stored. Basic markdown formatting survives, scripts and
// event handlers do not.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AllowElements("p", "br", "strong", "em", "code", "pre", "blockquote")
	p.AllowElements("ul", "ol", "li")
	p.AllowAttrs("href").OnElements("a")
	p.RequireParseableURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoFollowOnLinks(true)
	return p
}
