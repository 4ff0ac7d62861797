package site

import (
	"slices"

	"github.com/eringen/precinct/content"
)

// Action is a navigation event handled by Reduce.
type Action interface{ isAction() }

type (
	// Navigate switches the top-level page.
	Navigate struct{ Page Page }
	// ScrollTo goes to the home page and queues a scroll to a section.
	ScrollTo struct{ Section string }
	// ScrollDone clears the queued scroll once it has been sent.
	ScrollDone struct{}
	// OpenPost shows a post in detail.
	OpenPost struct{ ID string }
	// ClosePost returns from a post to the blog list.
	ClosePost struct{}
	// PreviewBusiness opens the listing preview modal.
	PreviewBusiness struct{ ID string }
	// ClosePreview closes the listing preview modal.
	ClosePreview struct{}
	// FilterCategory narrows the directory and shows the home page it lives
	// on. An empty category shows all.
	FilterCategory struct{ Category string }
	// SessionChanged reports the auth gate's principal. Email is empty when
	// signed out.
	SessionChanged struct {
		SignedIn bool
		Email    string
	}
	// LoginSucceeded moves from the login page to the dashboard.
	LoginSucceeded struct{}
	// LoginFailed shows an inline login error.
	LoginFailed struct{ Message string }
	// SelectTab switches the admin sub-view.
	SelectTab struct{ Tab AdminTab }
	// OpenBusinessForm opens the listing modal. An empty EditID creates.
	OpenBusinessForm struct{ EditID string }
	// CloseBusinessForm discards the listing modal.
	CloseBusinessForm struct{}
	// OpenBlogForm opens the post modal. An empty EditID creates.
	OpenBlogForm struct{ EditID string }
	// CloseBlogForm discards the post modal.
	CloseBlogForm struct{}
	// ShowAlert raises the blocking alert.
	ShowAlert struct{ Message string }
	// DismissAlert closes the blocking alert.
	DismissAlert struct{}
)

func (Navigate) isAction()          {}
func (ScrollTo) isAction()          {}
func (ScrollDone) isAction()        {}
func (OpenPost) isAction()          {}
func (ClosePost) isAction()         {}
func (PreviewBusiness) isAction()   {}
func (ClosePreview) isAction()      {}
func (FilterCategory) isAction()    {}
func (SessionChanged) isAction()    {}
func (LoginSucceeded) isAction()    {}
func (LoginFailed) isAction()       {}
func (SelectTab) isAction()         {}
func (OpenBusinessForm) isAction()  {}
func (CloseBusinessForm) isAction() {}
func (OpenBlogForm) isAction()      {}
func (CloseBlogForm) isAction()     {}
func (ShowAlert) isAction()         {}
func (DismissAlert) isAction()      {}

// Reduce returns the state after a. It never touches the store and never
// grants admin-only views to a signed-out state.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Navigate:
		switch a.Page {
		case PageHome, PageLogin:
			s.Page = a.Page
		case PageBlog:
			s.Page = PageBlog
			s.SelectedPostID = ""
		case PageAdmin:
			if s.IsAdmin {
				s.Page = PageAdmin
			} else {
				s.Page = PageLogin
			}
		}
		if s.Page != PageLogin {
			s.LoginError = ""
		}
		s.PreviewBusinessID = ""

	case ScrollTo:
		if !slices.Contains(Sections, a.Section) {
			return s
		}
		s.Page = PageHome
		s.PreviewBusinessID = ""
		s.ScrollTarget = a.Section

	case ScrollDone:
		s.ScrollTarget = ""

	case OpenPost:
		if _, ok := s.Post(a.ID); !ok {
			return s
		}
		s.Page = PageBlog
		s.SelectedPostID = a.ID

	case ClosePost:
		s.Page = PageBlog
		s.SelectedPostID = ""

	case PreviewBusiness:
		if _, ok := s.Business(a.ID); ok {
			s.PreviewBusinessID = a.ID
		}

	case ClosePreview:
		s.PreviewBusinessID = ""

	case FilterCategory:
		s.Page = PageHome
		s.LoginError = ""
		s.Category = ""
		for _, f := range Filters {
			if f.Category == a.Category {
				s.Category = a.Category
			}
		}

	case SessionChanged:
		s.IsAdmin = a.SignedIn
		s.AdminEmail = a.Email
		if !a.SignedIn {
			s.AdminEmail = ""
			s.BusinessForm = nil
			s.BlogForm = nil
			if s.Page == PageAdmin {
				s.Page = PageHome
			}
		}

	case LoginSucceeded:
		if !s.IsAdmin {
			return s
		}
		s.Page = PageAdmin
		s.AdminTab = TabDashboard
		s.LoginError = ""

	case LoginFailed:
		s.Page = PageLogin
		s.LoginError = a.Message

	case SelectTab:
		if !s.IsAdmin || s.Page != PageAdmin {
			return s
		}
		switch a.Tab {
		case TabDashboard, TabBusinesses, TabBlogs:
			s.AdminTab = a.Tab
		}

	case OpenBusinessForm:
		if !s.IsAdmin {
			return s
		}
		form := &BusinessForm{Draft: content.Business{Rating: DefaultBusinessRating, Image: DefaultBusinessImage}}
		if a.EditID != "" {
			b, ok := s.Business(a.EditID)
			if !ok {
				return s
			}
			form = &BusinessForm{EditID: b.ID, Draft: b}
		}
		s.BusinessForm = form
		s.PreviewBusinessID = ""

	case CloseBusinessForm:
		s.BusinessForm = nil

	case OpenBlogForm:
		if !s.IsAdmin {
			return s
		}
		form := &BlogForm{Draft: content.BlogPost{Image: DefaultPostImage}}
		if a.EditID != "" {
			p, ok := s.Post(a.EditID)
			if !ok {
				return s
			}
			form = &BlogForm{EditID: p.ID, Draft: p}
		}
		s.BlogForm = form

	case CloseBlogForm:
		s.BlogForm = nil

	case ShowAlert:
		s.Alert = a.Message

	case DismissAlert:
		s.Alert = ""
	}
	return s
}
