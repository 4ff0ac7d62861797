// Package content defines the records the precinct site publishes: directory
// businesses, blog posts and the site-wide view counters.
package content

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/eringen/precinct/docstore"
)

// Collection and document names in the document store.
const (
	CollectionBusinesses = "businesses"
	CollectionBlogs      = "blogs"
	CollectionAnalytics  = "analytics"
	StatsDocID           = "stats"
)

// AdminAuthor is the author label stamped on every post.
const AdminAuthor = "Admin"

// DateLayout is the ISO date format used for post dates.
const DateLayout = "2006-01-02"

// Categories lists the directory categories offered by the business form and
// the directory filter.
var Categories = []string{"Restaurant", "Bakery", "Grocery", "Fashion", "Cafe", "Services"}

// ErrValidation is wrapped by every required-field failure.
var ErrValidation = errors.New("validation failed")

// Business is a directory listing.
type Business struct {
	ID          string
	Name        string
	Category    string
	Description string
	Address     string
	Phone       string
	Rating      float64
	Image       string
	Website     string
	Facebook    string
	Instagram   string
}

// BlogPost is a published article. Date, Author and Views are owned by the
// site, not by the edit form.
type BlogPost struct {
	ID      string
	Title   string
	Excerpt string
	Content string
	Date    string
	Author  string
	Image   string
	Views   int
}

// SiteStats is the singleton counter record.
type SiteStats struct {
	PageViews int `json:"pageViews"`
	BlogViews int `json:"blogViews"`
}

// Validate checks the required business fields.
func (b Business) Validate() error {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"name", b.Name},
		{"category", b.Category},
		{"description", b.Description},
		{"address", b.Address},
		{"phone", b.Phone},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	if math.IsNaN(b.Rating) || b.Rating < 0 || b.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrValidation)
	}
	return nil
}

// Validate checks the required post fields.
func (p BlogPost) Validate() error {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"title", p.Title},
		{"excerpt", p.Excerpt},
		{"content", p.Content},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Paragraphs splits post content on blank lines.
func (p BlogPost) Paragraphs() []string {
	text := strings.ReplaceAll(p.Content, "\r\n", "\n")
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		if s := strings.TrimSpace(para); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Fields returns the document body for b. Optional links are omitted when
// empty, as the seeded records do.
func (b Business) Fields() docstore.Fields {
	f := docstore.Fields{
		"name":        b.Name,
		"category":    b.Category,
		"description": b.Description,
		"address":     b.Address,
		"phone":       b.Phone,
		"rating":      b.Rating,
		"image":       b.Image,
	}
	for k, v := range map[string]string{"website": b.Website, "facebook": b.Facebook, "instagram": b.Instagram} {
		if v != "" {
			f[k] = v
		}
	}
	return f
}

// UpdateFields is the partial update sent when b replaces an existing
// listing. Cleared links are removed from the document.
func (b Business) UpdateFields() docstore.Fields {
	f := b.Fields()
	for _, k := range []string{"website", "facebook", "instagram"} {
		if _, ok := f[k]; !ok {
			f[k] = nil
		}
	}
	return f
}

// BusinessFromDoc maps a stored document to a Business.
func BusinessFromDoc(d docstore.Doc) Business {
	return Business{
		ID:          d.ID,
		Name:        d.Fields.String("name"),
		Category:    d.Fields.String("category"),
		Description: d.Fields.String("description"),
		Address:     d.Fields.String("address"),
		Phone:       d.Fields.String("phone"),
		Rating:      d.Fields.Float("rating"),
		Image:       d.Fields.String("image"),
		Website:     d.Fields.String("website"),
		Facebook:    d.Fields.String("facebook"),
		Instagram:   d.Fields.String("instagram"),
	}
}

// Fields returns the full document body for p.
func (p BlogPost) Fields() docstore.Fields {
	return docstore.Fields{
		"title":   p.Title,
		"excerpt": p.Excerpt,
		"content": p.Content,
		"date":    p.Date,
		"author":  p.Author,
		"image":   p.Image,
		"views":   p.Views,
	}
}

// EditableFields is the partial update for an edited post. It never carries
// views, date or author.
func (p BlogPost) EditableFields() docstore.Fields {
	return docstore.Fields{
		"title":   p.Title,
		"excerpt": p.Excerpt,
		"content": p.Content,
		"image":   p.Image,
	}
}

// BlogPostFromDoc maps a stored document to a BlogPost.
func BlogPostFromDoc(d docstore.Doc) BlogPost {
	views := d.Fields.Int("views")
	if views < 0 {
		views = 0
	}
	return BlogPost{
		ID:      d.ID,
		Title:   d.Fields.String("title"),
		Excerpt: d.Fields.String("excerpt"),
		Content: d.Fields.String("content"),
		Date:    d.Fields.String("date"),
		Author:  d.Fields.String("author"),
		Image:   d.Fields.String("image"),
		Views:   views,
	}
}

// StatsFromDoc maps the analytics singleton to SiteStats.
func StatsFromDoc(d docstore.Doc) SiteStats {
	return SiteStats{
		PageViews: d.Fields.Int("pageViews"),
		BlogViews: d.Fields.Int("blogViews"),
	}
}
