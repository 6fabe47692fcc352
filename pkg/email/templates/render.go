package templates

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrMarkupConversion is returned when the markup body cannot be converted to HTML.
var ErrMarkupConversion = errors.New("failed to convert markup to html")

// Layout wraps converted body HTML into a complete email document.
type Layout func(content string) templ.Component

// markup converts the email layout language (GitHub flavoured Markdown with raw
// HTML passthrough) into HTML.
var markup = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// DefaultLayout is a minimal responsive single-column email shell.
var DefaultLayout Layout = func(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, layoutHead); err != nil {
			return err
		}
		if _, err := io.WriteString(w, content); err != nil {
			return err
		}
		_, err := io.WriteString(w, layoutTail)
		return err
	})
}

const (
	layoutHead = `<!DOCTYPE html><html><head><meta charset="utf-8">` +
		`<meta name="viewport" content="width=device-width,initial-scale=1"></head>` +
		`<body style="margin:0;padding:0;background:#f4f4f5;">` +
		`<table role="presentation" width="100%" cellpadding="0" cellspacing="0"><tr><td align="center">` +
		`<table role="presentation" width="600" cellpadding="24" cellspacing="0" style="background:#ffffff;font-family:Helvetica,Arial,sans-serif;font-size:15px;line-height:1.5;color:#18181b;">` +
		`<tr><td>`
	layoutTail = `</td></tr></table></td></tr></table></body></html>`
)

// MarkupToHTML converts markup source into an HTML fragment.
func MarkupToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := markup.Convert([]byte(source), &buf); err != nil {
		return "", errors.Join(ErrMarkupConversion, err)
	}
	return buf.String(), nil
}

// RenderMarkup converts markup to HTML and wraps it with the layout.
func RenderMarkup(ctx context.Context, layout Layout, source string) (string, error) {
	fragment, err := MarkupToHTML(source)
	if err != nil {
		return "", err
	}
	if layout == nil {
		layout = DefaultLayout
	}
	return Render(ctx, layout(fragment))
}

// Render takes a templ.Component and renders it to a string.
func Render(ctx context.Context, tpl templ.Component) (string, error) {
	var sb strings.Builder
	if err := tpl.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
