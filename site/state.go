// Package site holds the state of one page instance, the reducer that
// navigates it and the coordinator that applies store-backed mutations.
package site

import (
	"sort"

	"github.com/eringen/precinct/content"
)

// Page is a top-level view.
type Page string

const (
	PageHome  Page = "home"
	PageBlog  Page = "blog"
	PageLogin Page = "login"
	PageAdmin Page = "admin"
)

// AdminTab is a sub-view of the admin page.
type AdminTab string

const (
	TabDashboard  AdminTab = "dashboard"
	TabBusinesses AdminTab = "businesses"
	TabBlogs      AdminTab = "blogs"
)

// Sections are the in-page anchors of the home page.
var Sections = []string{"home", "about", "businesses", "events", "visit", "contact"}

// Filter is a directory filter button.
type Filter struct {
	Label    string
	Category string
}

// Filters lists the directory filter buttons. An empty category shows all.
var Filters = []Filter{
	{"All", ""},
	{"Restaurants", "Restaurant"},
	{"Bakeries", "Bakery"},
	{"Groceries", "Grocery"},
	{"Fashion", "Fashion"},
	{"Services", "Services"},
}

// Form defaults for new records.
const (
	DefaultBusinessRating = 4.5
	DefaultBusinessImage  = "https://picsum.photos/400/220"
	DefaultPostImage      = "https://picsum.photos/400/250"
)

// User-facing messages.
const (
	MsgInvalidCredentials   = "Invalid credentials."
	MsgSaveBusinessFailed   = "Failed to save business. Please try again."
	MsgDeleteBusinessFailed = "Failed to delete business. Please try again."
	MsgSavePostFailed       = "Failed to save blog post. Please try again."
	MsgDeletePostFailed     = "Failed to delete blog post. Please try again."
	ConfirmDeleteBusiness   = "Are you sure you want to delete this business?"
	ConfirmDeletePost       = "Are you sure you want to delete this blog post?"
)

// BusinessForm is the open create/edit business modal.
type BusinessForm struct {
	EditID string
	Draft  content.Business
	Error  string
}

// BlogForm is the open create/edit post modal.
type BlogForm struct {
	EditID string
	Draft  content.BlogPost
	Error  string
}

// State is everything one page instance shows. Slices are never modified in
// place; every change builds a new slice, so snapshots may share them.
type State struct {
	Page     Page
	AdminTab AdminTab

	SelectedPostID    string
	PreviewBusinessID string
	BusinessForm      *BusinessForm
	BlogForm          *BlogForm

	IsAdmin    bool
	AdminEmail string
	LoginError string

	Alert        string
	ScrollTarget string
	Category     string

	Businesses []content.Business
	Blogs      []content.BlogPost
	Stats      content.SiteStats
}

// NewState returns the initial state.
func NewState() State {
	return State{Page: PageHome, AdminTab: TabDashboard}
}

// SelectedPost returns the post shown in detail, if any.
func (s State) SelectedPost() (content.BlogPost, bool) {
	if s.SelectedPostID == "" {
		return content.BlogPost{}, false
	}
	return s.Post(s.SelectedPostID)
}

// Post finds a post by id.
func (s State) Post(id string) (content.BlogPost, bool) {
	for _, p := range s.Blogs {
		if p.ID == id {
			return p, true
		}
	}
	return content.BlogPost{}, false
}

// Business finds a listing by id.
func (s State) Business(id string) (content.Business, bool) {
	for _, b := range s.Businesses {
		if b.ID == id {
			return b, true
		}
	}
	return content.Business{}, false
}

// PreviewBusiness returns the listing shown in the preview modal, if any.
func (s State) PreviewBusiness() (content.Business, bool) {
	if s.PreviewBusinessID == "" {
		return content.Business{}, false
	}
	return s.Business(s.PreviewBusinessID)
}

// VisibleBusinesses applies the directory filter.
func (s State) VisibleBusinesses() []content.Business {
	if s.Category == "" {
		return s.Businesses
	}
	var out []content.Business
	for _, b := range s.Businesses {
		if b.Category == s.Category {
			out = append(out, b)
		}
	}
	return out
}

// PostsByViews returns posts ordered by view count, most viewed first.
func (s State) PostsByViews() []content.BlogPost {
	out := append([]content.BlogPost(nil), s.Blogs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	return out
}

// TotalPostViews sums the view counters of the loaded posts.
func (s State) TotalPostViews() int {
	n := 0
	for _, p := range s.Blogs {
		n += p.Views
	}
	return n
}
