package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/precinct/content"
	"github.com/eringen/precinct/site"
)

func blogList(s site.State) templ.Component {
	return component(func(b *builder) {
		b.raw(`<section class="blog" id="blog"><div class="container"><div class="section-head"><h2>Little Bamiyan Blog</h2>`)
		if s.IsAdmin {
			b.raw(`<button type="button" class="add-btn" hx-post="/admin/blog/new" data-admin>+ Add Blog Post</button>`)
		}
		b.raw(`</div><div class="blog-grid">`)
		for _, p := range s.Blogs {
			b.child(blogCard(p, s.IsAdmin))
		}
		if len(s.Blogs) == 0 {
			b.raw(`<p class="empty">No posts yet.</p>`)
		}
		b.raw(`</div></div></section>`)
	})
}

func blogCard(p content.BlogPost, admin bool) templ.Component {
	return component(func(b *builder) {
		open := "/blog/" + p.ID + "/open"
		b.raw(`<div class="blog-card"`)
		b.attr("hx-post", open)
		b.raw(`><div class="blog-image"><img`)
		b.url("src", p.Image)
		b.attr("alt", p.Title)
		b.raw(`>`)
		if admin {
			b.raw(`<div class="admin-controls" data-admin>`)
			editButton(b, "/admin/blog/"+p.ID+"/edit", true)
			deleteButton(b, "/admin/blog/"+p.ID+"/delete", site.ConfirmDeletePost, true)
			b.raw(`</div>`)
		}
		b.raw(`</div><div class="blog-info"><div class="blog-meta">`)
		b.text(p.Date)
		b.raw(` &bull; By `)
		b.text(p.Author)
		b.raw(` &bull; `)
		b.num(p.Views)
		b.raw(` views</div><h3 class="blog-title">`)
		b.text(p.Title)
		b.raw(`</h3><p class="blog-excerpt">`)
		b.text(p.Excerpt)
		b.raw(`</p><a`)
		b.url("href", "/?post="+p.ID)
		b.raw(` class="blog-link"`)
		b.attr("hx-post", open)
		b.raw(` hx-trigger="click consume">Read more &rarr;</a></div></div>`)
	})
}

func blogPost(p content.BlogPost) templ.Component {
	return component(func(b *builder) {
		b.raw(`<section class="blog-view"><div class="container"><div class="blog-view-head">`,
			`<a href="/" hx-post="/blog/close" class="back-link">&larr; Back to blog</a>`,
			`<div class="blog-views"><span>`)
		b.num(p.Views)
		b.raw(` views</span></div></div><h1 class="blog-view-title">`)
		b.text(p.Title)
		b.raw(`</h1><div class="blog-view-meta">Published on `)
		b.text(p.Date)
		b.raw(` &bull; By `)
		b.text(p.Author)
		b.raw(`</div><div class="blog-view-image"><img`)
		b.url("src", p.Image)
		b.attr("alt", p.Title)
		b.raw(`></div><div class="blog-view-content">`)
		for _, para := range p.Paragraphs() {
			b.raw(`<p>`)
			b.text(para)
			b.raw(`</p>`)
		}
		b.raw(`</div></div></section>`)
	})
}

func login(loginError string) templ.Component {
	return component(func(b *builder) {
		b.raw(`<section class="login-page"><div class="container narrow"><h2>Admin Login</h2>`,
			`<form class="login-form" hx-post="/login">`,
			`<div class="form-group"><label class="form-label" for="login-email">Email</label>`,
			`<input id="login-email" type="email" name="email" class="form-input" required placeholder="Enter your email" autocomplete="username"></div>`,
			`<div class="form-group"><label class="form-label" for="login-password">Password</label>`,
			`<input id="login-password" type="password" name="password" class="form-input" required placeholder="Enter your password" autocomplete="current-password"></div>`)
		if loginError != "" {
			b.raw(`<div class="login-error" role="alert">`)
			b.text(loginError)
			b.raw(`</div>`)
		}
		b.raw(`<button type="submit" class="form-submit wide">Login</button></form>`,
			`<p class="center"><a href="/" hx-post="/nav/home">&larr; Back to Home</a></p></div></section>`)
	})
}
