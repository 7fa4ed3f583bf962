package model

// PageMetadata describes a rendered page.
type PageMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	SourceURL   string `json:"sourceURL,omitempty"`
}

// Page is a rendered page as returned by the fetch gateway, normalized to a
// single shape regardless of which response format the backend used.
type Page struct {
	Success  bool         `json:"success"`
	Markdown string       `json:"markdown"`
	HTML     string       `json:"html,omitempty"`
	Metadata PageMetadata `json:"metadata"`
}

// Empty reports whether the page carries no markdown content.
func (p *Page) Empty() bool {
	return p == nil || len(p.Markdown) == 0
}
