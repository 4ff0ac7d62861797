package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/precinct/content"
	"github.com/eringen/precinct/site"
)

var adminTabs = []struct {
	tab   site.AdminTab
	label string
}{
	{site.TabDashboard, "Dashboard"},
	{site.TabBusinesses, "Businesses"},
	{site.TabBlogs, "Blogs"},
}

func admin(s site.State) templ.Component {
	return component(func(b *builder) {
		b.raw(`<section class="admin-page" data-admin><div class="container"><h2>Admin Dashboard</h2><div class="admin-tabs">`)
		for _, t := range adminTabs {
			class := "admin-tab"
			if t.tab == s.AdminTab {
				class += " active"
			}
			b.raw(`<button type="button"`)
			b.attr("class", class)
			b.attr("hx-post", "/admin/tab/"+string(t.tab))
			b.raw(`>`, t.label, `</button>`)
		}
		b.raw(`</div>`)
		switch s.AdminTab {
		case site.TabDashboard:
			b.child(dashboard(s))
		case site.TabBusinesses:
			b.child(businessTable(s.Businesses))
		case site.TabBlogs:
			b.child(blogTable(s.Blogs))
		}
		b.raw(`</div></section>`)
	})
}

func statCard(b *builder, label string, value int) {
	b.raw(`<div class="stat-card"><h3>`, label, `</h3><p class="stat-value">`)
	b.num(value)
	b.raw(`</p></div>`)
}

func dashboard(s site.State) templ.Component {
	return component(func(b *builder) {
		b.raw(`<div class="dashboard-content"><div class="stats-grid">`)
		statCard(b, "Total Website Views", s.Stats.PageViews)
		statCard(b, "Businesses Listed", len(s.Businesses))
		statCard(b, "Blog Posts", len(s.Blogs))
		statCard(b, "Total Blog Views", s.Stats.BlogViews)
		b.raw(`</div><div class="recent-activity"><h3>Top Blog Posts by Views</h3><table class="admin-table">`,
			`<thead><tr><th>Title</th><th>Date</th><th class="num">Views</th></tr></thead><tbody>`)
		for _, p := range s.PostsByViews() {
			b.raw(`<tr><td>`)
			b.text(p.Title)
			b.raw(`</td><td>`)
			b.text(p.Date)
			b.raw(`</td><td class="num">`)
			b.num(p.Views)
			b.raw(`</td></tr>`)
		}
		b.raw(`</tbody></table></div></div>`)
	})
}

func businessTable(bs []content.Business) templ.Component {
	return component(func(b *builder) {
		b.raw(`<div class="businesses-content"><div class="section-head"><h3>Manage Businesses</h3>`,
			`<button type="button" class="add-btn" hx-post="/admin/business/new">+ Add Business</button></div>`,
			`<table class="admin-table"><thead><tr><th>Name</th><th>Category</th><th>Address</th><th class="center">Actions</th></tr></thead><tbody>`)
		for _, biz := range bs {
			b.raw(`<tr><td>`)
			b.text(biz.Name)
			b.raw(`</td><td>`)
			b.text(biz.Category)
			b.raw(`</td><td>`)
			b.text(biz.Address)
			b.raw(`</td><td class="center">`)
			editButton(b, "/admin/business/"+biz.ID+"/edit", false)
			deleteButton(b, "/admin/business/"+biz.ID+"/delete", site.ConfirmDeleteBusiness, false)
			b.raw(`</td></tr>`)
		}
		b.raw(`</tbody></table></div>`)
	})
}

func blogTable(ps []content.BlogPost) templ.Component {
	return component(func(b *builder) {
		b.raw(`<div class="blogs-content"><div class="section-head"><h3>Manage Blog Posts</h3>`,
			`<button type="button" class="add-btn" hx-post="/admin/blog/new">+ Add Blog Post</button></div>`,
			`<table class="admin-table"><thead><tr><th>Title</th><th>Date</th><th class="num">Views</th><th class="center">Actions</th></tr></thead><tbody>`)
		for _, p := range ps {
			b.raw(`<tr><td>`)
			b.text(p.Title)
			b.raw(`</td><td>`)
			b.text(p.Date)
			b.raw(`</td><td class="num">`)
			b.num(p.Views)
			b.raw(`</td><td class="center">`)
			editButton(b, "/admin/blog/"+p.ID+"/edit", false)
			deleteButton(b, "/admin/blog/"+p.ID+"/delete", site.ConfirmDeletePost, false)
			b.raw(`</td></tr>`)
		}
		b.raw(`</tbody></table></div>`)
	})
}

func modalHeader(b *builder, title, closePath string) {
	b.raw(`<div class="modal-header"><h2 class="modal-title">`)
	b.text(title)
	b.raw(`</h2><button type="button" class="modal-close"`)
	b.attr("hx-post", closePath)
	b.raw(` aria-label="Close">&times;</button></div>`)
}

func formError(b *builder, msg string) {
	if msg != "" {
		b.raw(`<div class="form-error" role="alert">`)
		b.text(msg)
		b.raw(`</div>`)
	}
}

// input writes a labelled form input.
func input(b *builder, label, typ, name, value, placeholder string, required bool) {
	b.raw(`<div class="form-group"><label class="form-label">`, label, `</label><input`)
	b.attr("type", typ)
	b.attr("name", name)
	b.raw(` class="form-input"`)
	b.attr("value", value)
	if placeholder != "" {
		b.attr("placeholder", placeholder)
	}
	b.flag("required", required)
	b.raw(`></div>`)
}

func textarea(b *builder, label, name, value string, rows string) {
	b.raw(`<div class="form-group"><label class="form-label">`, label, `</label><textarea`)
	b.attr("name", name)
	b.raw(` class="form-textarea"`)
	b.attr("rows", rows)
	b.raw(` required>`)
	b.text(value)
	b.raw(`</textarea></div>`)
}

func businessForm(f *site.BusinessForm) templ.Component {
	return component(func(b *builder) {
		d := f.Draft
		title, submit := "Add New Business", "Add Business"
		if f.EditID != "" {
			title, submit = "Edit Business", "Update Business"
		}
		b.raw(`<div class="modal-overlay" data-admin><div class="modal-content">`)
		modalHeader(b, title, "/admin/business/form/close")
		formError(b, f.Error)
		b.raw(`<form id="business-form" hx-post="/admin/business/save"><div class="form-grid">`)
		input(b, "Business Name", "text", "name", d.Name, "", true)
		b.raw(`<div class="form-group"><label class="form-label">Category</label>`,
			`<select name="category" class="form-select" required><option value="">Select Category</option>`)
		for _, c := range content.Categories {
			b.raw(`<option`)
			b.attr("value", c)
			b.flag("selected", c == d.Category)
			b.raw(`>`)
			b.text(c)
			b.raw(`</option>`)
		}
		b.raw(`</select></div></div>`)
		textarea(b, "Description", "description", d.Description, "3")
		b.raw(`<div class="form-grid">`)
		input(b, "Address", "text", "address", d.Address, "", true)
		input(b, "Phone", "text", "phone", d.Phone, "", true)
		b.raw(`<div class="form-group"><label class="form-label">Rating</label>`,
			`<input type="number" name="rating" step="0.1" min="0" max="5" class="form-input"`)
		b.attr("value", ratingInput(d.Rating))
		b.raw(` required></div>`)
		b.child(imageField("business-form", d.Image, site.DefaultBusinessImage))
		b.raw(`</div><div class="form-grid">`)
		input(b, "Website URL", "url", "website", d.Website, "https://example.com", false)
		input(b, "Facebook URL", "url", "facebook", d.Facebook, "https://facebook.com/page", false)
		input(b, "Instagram URL", "url", "instagram", d.Instagram, "https://instagram.com/page", false)
		b.raw(`</div><button type="submit" class="form-submit">`, submit, `</button></form>`)
		b.child(imageUpload("business-form"))
		b.raw(`</div></div>`)
	})
}

func blogForm(f *site.BlogForm) templ.Component {
	return component(func(b *builder) {
		d := f.Draft
		title, submit := "Add New Blog Post", "Add Blog Post"
		if f.EditID != "" {
			title, submit = "Edit Blog Post", "Update Blog Post"
		}
		b.raw(`<div class="modal-overlay" data-admin><div class="modal-content">`)
		modalHeader(b, title, "/admin/blog/form/close")
		formError(b, f.Error)
		b.raw(`<form id="blog-form" hx-post="/admin/blog/save">`)
		input(b, "Title", "text", "title", d.Title, "", true)
		textarea(b, "Excerpt", "excerpt", d.Excerpt, "2")
		textarea(b, "Content", "content", d.Content, "10")
		b.child(imageField("blog-form", d.Image, site.DefaultPostImage))
		b.raw(`<button type="submit" class="form-submit">`, submit, `</button></form>`)
		b.child(imageUpload("blog-form"))
		b.raw(`</div></div>`)
	})
}

// imageField sits outside its form's element tree in the upload swap, so the
// input names its form explicitly.
func imageField(form, value, placeholder string) templ.Component {
	return component(func(b *builder) {
		b.raw(`<div class="form-group"`)
		b.attr("id", form+"-image")
		b.raw(`><label class="form-label">Image URL</label><input type="text" name="image"`)
		b.attr("form", form)
		b.raw(` class="form-input"`)
		b.attr("value", value)
		b.attr("placeholder", placeholder)
		b.raw(`></div>`)
	})
}

func imageUpload(form string) templ.Component {
	return component(func(b *builder) {
		b.raw(`<form class="image-upload" hx-post="/admin/images/upload" hx-encoding="multipart/form-data" hx-trigger="change"`)
		b.attr("hx-target", "#"+form+"-image")
		b.raw(` hx-swap="outerHTML"><input type="hidden" name="form"`)
		b.attr("value", form)
		b.raw(`><label class="form-label">Or upload an image</label>`,
			`<input type="file" name="file" accept="image/jpeg,image/png,image/gif,image/webp"></form>`)
	})
}

func socialLink(b *builder, href, label string) {
	if href == "" {
		return
	}
	b.raw(`<a`)
	b.url("href", href)
	b.raw(` target="_blank" rel="noopener noreferrer" class="social-link"><span>`, label, `</span></a>`)
}

func businessPreview(biz content.Business) templ.Component {
	return component(func(b *builder) {
		b.raw(`<div class="modal-overlay"><div class="modal-content business-preview-modal">`)
		modalHeader(b, biz.Name, "/business/preview/close")
		b.raw(`<div class="modal-body"><div class="business-preview-image"><img`)
		b.url("src", biz.Image)
		b.attr("alt", biz.Name)
		b.raw(`><span class="business-category">`)
		b.text(biz.Category)
		b.raw(`</span></div><div class="business-preview-details"><p class="business-description">`)
		b.text(biz.Description)
		b.raw(`</p><div class="business-info-grid"><div class="business-info-item"><strong>Address:</strong><p>`)
		b.text(biz.Address)
		b.raw(`</p></div><div class="business-info-item"><strong>Phone:</strong><p><a`)
		b.url("href", "tel:"+biz.Phone)
		b.raw(`>`)
		b.text(biz.Phone)
		b.raw(`</a></p></div><div class="business-info-item"><strong>Rating:</strong><p class="business-rating">`)
		b.text(rating(biz.Rating))
		b.raw(` / 5</p></div></div>`)
		if biz.Website != "" || biz.Facebook != "" || biz.Instagram != "" {
			b.raw(`<div class="business-links"><h3>Visit Us Online</h3><div class="social-links-grid">`)
			socialLink(b, biz.Website, "Website")
			socialLink(b, biz.Facebook, "Facebook")
			socialLink(b, biz.Instagram, "Instagram")
			b.raw(`</div></div>`)
		}
		b.raw(`</div></div></div></div>`)
	})
}
