package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/precinct/site"
)

func navLink(b *builder, label string, page site.Page, active bool) {
	b.raw(`<li><a href="/"`)
	b.attr("hx-post", "/nav/"+string(page))
	if active {
		b.raw(` class="active"`)
	}
	b.raw(`>`, label, `</a></li>`)
}

func nav(p Page) templ.Component {
	return component(func(b *builder) {
		b.raw(`<nav><div class="container"><div class="nav-container"><div class="logo-container">`,
			`<a href="/" hx-post="/nav/home"><img src="/assets/logo.svg" alt="Little Bamiyan Logo" class="logo"></a>`,
			`<div class="logo-text"><h3 class="logo-name">Little Bamiyan</h3>`,
			`<div class="tagline">Hazara Cultural Heritage Center</div></div></div>`,
			`<button class="nav-toggle" type="button" data-toggle-menu>&#9776;</button><ul class="nav-menu">`)
		navLink(b, "Home", site.PageHome, p.NavActive(site.PageHome))
		b.raw(`<li><a href="/#about" hx-post="/section/about">About</a></li>`,
			`<li><a href="/#businesses" hx-post="/section/businesses">Businesses</a></li>`,
			`<li><a href="/#events" hx-post="/section/events">Events</a></li>`)
		navLink(b, "Blog", site.PageBlog, p.NavActive(site.PageBlog))
		b.raw(`<li><a href="/#visit" hx-post="/section/visit">Visit Us</a></li>`)
		if p.State.IsAdmin {
			navLink(b, "Dashboard", site.PageAdmin, p.NavActive(site.PageAdmin))
			b.raw(`<li><button type="button" class="logout-btn" hx-post="/logout">Logout</button></li>`)
		} else {
			navLink(b, "Admin", site.PageLogin, p.NavActive(site.PageLogin))
		}
		b.raw(`</ul></div></div></nav>`)
	})
}

func alert(message string) templ.Component {
	return component(func(b *builder) {
		b.raw(`<div class="modal-overlay" role="alertdialog" aria-modal="true">`,
			`<div class="modal-content alert-dialog"><p class="alert-message">`)
		b.text(message)
		b.raw(`</p><button type="button" class="form-submit" hx-post="/alert/dismiss" autofocus>OK</button></div></div>`)
	})
}

func sectionLabel(id string) string {
	if id == "visit" {
		return "Visit Us"
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

func footer() templ.Component {
	return component(func(b *builder) {
		b.raw(`<footer id="contact"><div class="footer-pattern"></div><div class="container">`,
			`<div class="footer-top"><div class="footer-logo">`,
			`<img src="/assets/logo.svg" alt="Little Bamiyan Logo" class="footer-logo-img">`,
			`<div class="footer-tagline">Hazara Cultural Heritage Center</div></div>`,
			`<div class="footer-nav"><div class="footer-nav-column"><h4>Explore</h4>`,
			`<a href="/" hx-post="/nav/home">Home</a>`)
		for _, id := range site.Sections {
			if id == "home" || id == "contact" {
				continue
			}
			b.raw(`<a`)
			b.attr("href", "/#"+id)
			b.attr("hx-post", "/section/"+id)
			b.raw(`>`)
			b.text(sectionLabel(id))
			b.raw(`</a>`)
		}
		b.raw(`</div><div class="footer-nav-column"><h4>Community</h4>`,
			`<a href="/" hx-post="/nav/blog">Hazara News</a><a href="/feed.xml">RSS Feed</a></div></div></div>`,
			`<div class="footer-bottom"><div class="footer-info">`,
			`<p>Thomas Street, Dandenong, VIC 3175 | Phone: (03) 9793 0000 | Email: info@littlebamiyan.com.au</p></div></div>`,
			`<div class="copyright"><p>&copy; 2025 Little Bamiyan Hazara Cultural Precinct. All Rights Reserved.</p></div>`,
			`</div></footer>`)
	})
}
