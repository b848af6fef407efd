package render

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/blackwell-systems/readshelf/internal/format"
)

// policy is the sanitizer applied to every HTML fragment.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	p.AllowAttrs("class").Globally()
	p.AllowElements("button")
	p.AllowAttrs("type").OnElements("button")
	return p
}

func sanitize(fragment string) string {
	return policy.Sanitize(fragment)
}

// Placeholder is the stand-in page for formats without page decoding.
func Placeholder(f format.Format, page int) *Content {
	name := strings.ToUpper(string(f))
	if name == "" {
		name = "Unknown format"
	}
	fragment := fmt.Sprintf(`<div class="page-placeholder">`+
		`<h2>%s</h2>`+
		`<p class="page-number">Page %d</p>`+
		`<p>%s page rendering is not available. This is a placeholder page.</p>`+
		`</div>`,
		html.EscapeString(name), page, html.EscapeString(name))
	return &Content{
		Type:       TypePlaceholder,
		PageNumber: page,
		Format:     f,
		HTML:       sanitize(fragment),
	}
}

// ErrorContent reports a page that failed to render, with a retry action
// for the reader.
func ErrorContent(f format.Format, page int, err error) *Content {
	msg := err.Error()
	fragment := fmt.Sprintf(`<div class="page-error">`+
		`<p>Failed to load page %d: %s</p>`+
		`<button type="button" class="page-retry">Retry</button>`+
		`</div>`,
		page, html.EscapeString(msg))
	return &Content{
		Type:       TypeError,
		PageNumber: page,
		Format:     f,
		HTML:       sanitize(fragment),
		Error:      msg,
	}
}

func placeholderStrategy(f format.Format) Strategy {
	return StrategyFunc(func(_ context.Context, _ []byte, page int) *Content {
		return Placeholder(f, page)
	})
}
