// Package views renders a page instance's state as HTML. Components are
// written by hand against templ.Component, so handlers render them through
// the same Render helpers as any other templ component.
package views

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/precinct/content"
	"github.com/eringen/precinct/site"
)

// SiteConfig is what the views need from the site configuration.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
}

// Page is the data every page component receives.
type Page struct {
	Site     SiteConfig
	CSRF     string
	Instance string
	State    site.State
}

// SelectedPost returns the post in detail view, or nil for the list.
func (p Page) SelectedPost() *content.BlogPost {
	if post, ok := p.State.SelectedPost(); ok {
		return &post
	}
	return nil
}

// Preview returns the listing in the preview modal, or nil.
func (p Page) Preview() *content.Business {
	if b, ok := p.State.PreviewBusiness(); ok {
		return &b
	}
	return nil
}

// NavActive reports whether page is the current top-level page.
func (p Page) NavActive(page site.Page) bool {
	return p.State.Page == page
}

// hxHeaders is the JSON every htmx request of the document carries.
func (p Page) hxHeaders() string {
	h, _ := json.Marshal(map[string]string{
		"X-CSRF-Token":    p.CSRF,
		"X-Page-Instance": p.Instance,
	})
	return string(h)
}

// builder collects the markup of one component. Every dynamic value goes
// through text, attr or url so it is escaped.
type builder struct {
	ctx context.Context
	buf bytes.Buffer
	err error
}

func component(fn func(b *builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &builder{ctx: ctx}
		fn(b)
		if b.err != nil {
			return b.err
		}
		_, err := w.Write(b.buf.Bytes())
		return err
	})
}

func (b *builder) raw(parts ...string) {
	for _, s := range parts {
		b.buf.WriteString(s)
	}
}

func (b *builder) text(s string) {
	b.buf.WriteString(templ.EscapeString(s))
}

// attr writes ` name="value"`.
func (b *builder) attr(name, value string) {
	b.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// url writes a link attribute, replacing unsafe schemes.
func (b *builder) url(name, u string) {
	b.attr(name, string(templ.URL(u)))
}

// flag writes a boolean attribute when on.
func (b *builder) flag(name string, on bool) {
	if on {
		b.raw(" ", name)
	}
}

func (b *builder) child(c templ.Component) {
	if b.err == nil {
		b.err = c.Render(b.ctx, &b.buf)
	}
}

func (b *builder) num(n int) {
	b.buf.WriteString(strconv.Itoa(n))
}

func rating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func ratingInput(r float64) string {
	return strconv.FormatFloat(r, 'f', 1, 64)
}

// Document renders the full HTML document for a fresh page load.
func Document(p Page) templ.Component {
	return component(func(b *builder) {
		b.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		b.text(p.Site.Name)
		b.raw(`</title>`)
		if p.Site.Description != "" {
			b.raw(`<meta name="description"`)
			b.attr("content", p.Site.Description)
			b.raw(`>`)
		}
		b.raw(`<link rel="alternate" type="application/rss+xml"`)
		b.attr("title", p.Site.Name)
		b.raw(` href="/feed.xml">`,
			`<link rel="stylesheet" href="/assets/precinct.css">`,
			`<script src="https://unpkg.com/htmx.org@2.0.4" crossorigin="anonymous"></script>`,
			`<script src="/assets/precinct.js" defer></script></head>`)
		b.raw(`<body`)
		b.attr("hx-headers", p.hxHeaders())
		b.raw(` hx-target="#app" hx-swap="innerHTML"><div id="app" class="main-content">`)
		b.child(App(p))
		b.raw(`</div></body></html>`)
	})
}

// App renders only the #app contents, for htmx swaps.
func App(p Page) templ.Component {
	return component(func(b *builder) {
		s := p.State
		b.child(nav(p))
		if s.IsAdmin {
			if s.BusinessForm != nil {
				b.child(businessForm(s.BusinessForm))
			}
			if s.BlogForm != nil {
				b.child(blogForm(s.BlogForm))
			}
		}
		if biz := p.Preview(); biz != nil {
			b.child(businessPreview(*biz))
		}
		if s.Alert != "" {
			b.child(alert(s.Alert))
		}
		switch {
		case s.Page == site.PageHome:
			b.child(templ.Join(hero(), about(), businesses(s), events(), visit()))
		case s.Page == site.PageBlog:
			if post := p.SelectedPost(); post != nil {
				b.child(blogPost(*post))
			} else {
				b.child(blogList(s))
			}
		case s.Page == site.PageLogin:
			b.child(login(s.LoginError))
		case s.Page == site.PageAdmin && s.IsAdmin:
			b.child(admin(s))
		}
		b.child(footer())
	})
}

// ImageField renders the image URL input prefilled after an upload.
func ImageField(form, value string) templ.Component {
	placeholder := site.DefaultBusinessImage
	if form == "blog-form" {
		placeholder = site.DefaultPostImage
	}
	return imageField(form, value, placeholder)
}

// NotFound renders the 404 page.
func NotFound(s SiteConfig) templ.Component {
	return errorPage(s, "Not found", "Page not found", "")
}

// ServerError renders the 500 page.
func ServerError(s SiteConfig) templ.Component {
	return errorPage(s, "Error", "Something went wrong", "Please try again in a moment.")
}

func errorPage(s SiteConfig, title, heading, message string) templ.Component {
	return component(func(b *builder) {
		b.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		b.text(title + " | " + s.Name)
		b.raw(`</title><link rel="stylesheet" href="/assets/precinct.css"></head>`,
			`<body><section class="error-page"><div class="container"><h2>`)
		b.text(heading)
		b.raw(`</h2>`)
		if message != "" {
			b.raw(`<p>`)
			b.text(message)
			b.raw(`</p>`)
		}
		b.raw(`<p><a href="/">&larr; Back to Home</a></p></div></section></body></html>`)
	})
}
