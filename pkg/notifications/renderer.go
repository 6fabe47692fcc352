package notifications

import (
	"context"
	"errors"
	"fmt"
	"html"
	"maps"
	"strings"

	"github.com/dmitrymomot/notifykit/pkg/email/templates"
)

// Renderer turns a resolved template into channel-ready text.
type Renderer struct {
	layout       templates.Layout
	escapeParams bool
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithEmailLayout overrides the HTML layout used for the email channel.
func WithEmailLayout(layout templates.Layout) RendererOption {
	return func(r *Renderer) {
		if layout != nil {
			r.layout = layout
		}
	}
}

// WithEscapedEmailParameters HTML-escapes parameter values before they are
// substituted into email bodies. Template text is unaffected, so authors keep
// full markup while producer-supplied values render as text.
func WithEscapedEmailParameters() RendererOption {
	return func(r *Renderer) { r.escapeParams = true }
}

// NewRenderer creates a renderer using the default email layout.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{layout: templates.DefaultLayout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render substitutes params into body and applies the channel's post-processing.
// Email bodies are expanded from markup to HTML after substitution, so
// placeholders may appear anywhere in the markup, including attribute values.
// Other channels get the substituted text as is.
//
// The markup converter passes raw HTML through. Without
// WithEscapedEmailParameters, parameter values are trusted exactly like
// template text: a value such as `<img src=...>` reaches the email as HTML.
func (r *Renderer) Render(ctx context.Context, body string, channel Channel, params map[string]string) (string, error) {
	if !IsSupportedChannel(channel) {
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, channel.String())
	}
	if body == "" {
		return "", nil
	}

	if channel != ChannelEmail {
		return Substitute(body, params), nil
	}

	if r.escapeParams && len(params) > 0 {
		escaped := maps.Clone(params)
		for k, v := range escaped {
			escaped[k] = html.EscapeString(v)
		}
		params = escaped
	}
	text := Substitute(body, params)

	out, err := templates.RenderMarkup(ctx, r.layout, text)
	if err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return out, nil
}

// RenderSubject substitutes params into a subject line. Subjects are plain text
// on every channel.
func (r *Renderer) RenderSubject(subject string, params map[string]string) string {
	return Substitute(subject, params)
}

// Substitute replaces every {key} whose key is present in params with its value.
// The scan is a single left-to-right pass: inserted values are never re-scanned
// and placeholders without a matching key are kept verbatim.
func Substitute(s string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(s, "{") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(s[open+1:], '}')
		if end < 0 {
			break
		}
		end += open + 1

		if v, ok := params[s[open+1:end]]; ok {
			b.WriteString(s[:open])
			b.WriteString(v)
			s = s[end+1:]
			continue
		}

		// Not a known key: emit the brace and keep scanning after it, so an
		// inner placeholder like "{{Name}}" still gets a chance to match.
		b.WriteString(s[:open+1])
		s = s[open+1:]
	}

	b.WriteString(s)
	return b.String()
}
