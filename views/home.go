package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/precinct/content"
	"github.com/eringen/precinct/site"
)

func hero() templ.Component {
	return component(func(b *builder) {
		b.raw(`<section class="hero" id="home"><div class="hero-content">`,
			`<h1>Experience Little Bamiyan</h1>`,
			`<p>Discover the vibrant culture, authentic cuisine, and warm hospitality of Melbourne's Hazara cultural heart</p>`,
			`<a href="/#businesses" hx-post="/section/businesses" class="cta-button">Explore The Bazaar</a>`,
			`</div></section>`)
	})
}

func about() templ.Component {
	return component(func(b *builder) {
		b.raw(`<section class="about" id="about"><div class="container"><h2>About Little Bamiyan</h2>`,
			`<div class="about-content"><div class="about-text">`,
			`<p>Little Bamiyan, named after the historic valley in central Afghanistan that has been home to Hazara people for centuries, is Melbourne's premier Hazara cultural precinct on Thomas Street in Dandenong. Our community honors the resilience, culture, and traditions of the Hazara people.</p>`,
			`<p>Since early 2000s, Hazara families have transformed this area into a vibrant hub celebrating our distinctive culture, language, and heritage. Our community's journey from the mountains of central Afghanistan to Melbourne has enriched the multicultural tapestry of Greater Dandenong.</p>`,
			`<p>Today, Little Bamiyan serves as a cultural bridge, offering authentic Hazara cuisine, traditional music and arts, and a warm community spirit that welcomes all visitors to experience our unique heritage and centuries-old traditions.</p>`,
			`</div><div class="about-image"><img src="https://picsum.photos/600/400" alt="Little Bamiyan Hazara Community"></div>`,
			`</div></div></section>`)
	})
}

func businesses(s site.State) templ.Component {
	return component(func(b *builder) {
		b.raw(`<section class="businesses" id="businesses"><div class="container">`,
			`<div class="section-head"><h2>Business Directory</h2>`)
		if s.IsAdmin {
			b.raw(`<button type="button" class="add-btn" hx-post="/admin/business/new" data-admin>+ Add Business</button>`)
		}
		b.raw(`</div><div class="filters">`)
		for _, f := range site.Filters {
			class := "filter-btn"
			if f.Category == s.Category {
				class += " active"
			}
			path := f.Category
			if path == "" {
				path = "all"
			}
			b.raw(`<button type="button"`)
			b.attr("class", class)
			b.attr("hx-post", "/business/filter/"+path)
			b.raw(`>`)
			b.text(f.Label)
			b.raw(`</button>`)
		}
		b.raw(`</div><div class="business-directory">`)
		visible := s.VisibleBusinesses()
		for _, biz := range visible {
			b.child(businessCard(biz, s.IsAdmin))
		}
		if len(visible) == 0 {
			b.raw(`<p class="empty">No businesses in this category yet.</p>`)
		}
		b.raw(`</div></div></section>`)
	})
}

func businessCard(biz content.Business, admin bool) templ.Component {
	return component(func(b *builder) {
		b.raw(`<div class="business-card"`)
		b.attr("hx-post", "/business/"+biz.ID+"/preview")
		b.raw(`><div class="business-image"><img`)
		b.url("src", biz.Image)
		b.attr("alt", biz.Name)
		b.raw(`><span class="business-category">`)
		b.text(biz.Category)
		b.raw(`</span>`)
		if admin {
			b.raw(`<div class="admin-controls" data-admin>`)
			editButton(b, "/admin/business/"+biz.ID+"/edit", true)
			deleteButton(b, "/admin/business/"+biz.ID+"/delete", site.ConfirmDeleteBusiness, true)
			b.raw(`</div>`)
		}
		b.raw(`</div><div class="business-info"><h3>`)
		b.text(biz.Name)
		b.raw(`</h3><p>`)
		b.text(biz.Description)
		b.raw(`</p><p><strong>Address:</strong> `)
		b.text(biz.Address)
		b.raw(`</p><div class="business-meta"><div class="business-rating">`)
		b.text(rating(biz.Rating))
		b.raw(`</div><a`)
		b.url("href", "tel:"+biz.Phone)
		b.raw(` class="business-phone" data-stop>`)
		b.text(biz.Phone)
		b.raw(`</a></div></div></div>`)
	})
}

// editButton and deleteButton are the admin row controls. Inside a
// clickable card they consume the click so the card's own action does not
// fire.
func editButton(b *builder, path string, inCard bool) {
	b.raw(`<button type="button" class="admin-btn"`)
	b.attr("hx-post", path)
	if inCard {
		b.raw(` hx-trigger="click consume"`)
	}
	b.raw(` aria-label="Edit">&#9998;</button>`)
}

func deleteButton(b *builder, path, confirm string, inCard bool) {
	b.raw(`<button type="button" class="admin-btn"`)
	b.attr("hx-post", path)
	if inCard {
		b.raw(` hx-trigger="click consume"`)
	}
	b.attr("hx-confirm", confirm)
	b.raw(` hx-vals='{"confirm": "yes"}' aria-label="Delete">&times;</button>`)
}

func events() templ.Component {
	return component(func(b *builder) {
		b.raw(`<section class="events" id="events"><div class="event-circles">`,
			`<div class="event-circle"></div><div class="event-circle"></div><div class="event-circle"></div></div>`,
			`<div class="container events-container"><h2>Upcoming Events</h2><div class="event-list">`,
			`<div class="event-card"><div class="event-date">April, 2025</div>`,
			`<div class="event-title">Nowroz Celebration</div>`,
			`<p>Join us for the New Year celebration and community festivities.</p></div>`,
			`</div></div></section>`)
	})
}

func visit() templ.Component {
	return component(func(b *builder) {
		b.raw(`<section class="visit-section" id="visit"><div class="container"><h2>Visit Little Bamiyan</h2>`,
			`<div class="visit-content"><div class="visit-info">`,
			`<h3>How to Find Us</h3><p>Little Bamiyan Hazara precinct is located on Thomas Street in Dandenong, approximately 30km southeast of Melbourne CBD.</p>`,
			`<h3>Public Transport</h3><p>Dandenong Station is within walking distance (approximately 10 minutes), served by multiple train lines and bus routes from central Melbourne.</p>`,
			`<h3>Parking</h3><p>Street parking is available on Thomas Street and surrounding areas. Public parking lots are located within a short walking distance.</p>`,
			`<h3>Best Times to Visit</h3><p>Experience the vibrant community atmosphere on weekends, especially Saturday mornings. Most restaurants and businesses are open seven days a week, with cultural events frequently held on weekends.</p>`,
			`</div><div class="visit-map">`,
			`<iframe src="https://www.google.com/maps?q=Thomas+Street,+Dandenong+VIC+3175&amp;output=embed" width="100%" height="100%" loading="lazy" referrerpolicy="no-referrer-when-downgrade" title="Little Bamiyan Location Map"></iframe>`,
			`</div></div></div></section>`)
	})
}
