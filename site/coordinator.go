package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/precinct/content"
	"github.com/eringen/precinct/docstore"
	"github.com/eringen/precinct/seed"
)

// ErrNotAdmin is returned for mutations attempted without an admin session.
var ErrNotAdmin = errors.New("site: admin session required")

// ErrNoForm is returned when a save arrives with no form open.
var ErrNoForm = errors.New("site: no form open")

// Store is the subset of the document store the coordinator writes through.
type Store interface {
	Insert(ctx context.Context, collection string, fields docstore.Fields) (string, error)
	Update(ctx context.Context, collection, id string, fields docstore.Fields) error
	Delete(ctx context.Context, collection, id string) error
}

// Loader reads both collections, seeding them when empty.
type Loader interface {
	Bootstrap(ctx context.Context) (seed.Result, error)
}

// Tracker records and reads the site counters.
type Tracker interface {
	RecordPageView(ctx context.Context) error
	RecordBlogView(ctx context.Context, postID string) error
	Load(ctx context.Context) (content.SiteStats, error)
}

// Coordinator applies store-backed mutations. Every method takes the current
// state and returns the next one; the error is for logging and tests, the
// user-facing outcome is already in the returned state.
type Coordinator struct {
	store   Store
	loader  Loader
	tracker Tracker
	log     *zap.Logger
	now     func() time.Time
}

// NewCoordinator wires a coordinator. A nil logger discards output.
func NewCoordinator(store Store, loader Loader, tracker Tracker, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{store: store, loader: loader, tracker: tracker, log: log, now: time.Now}
}

// Load fills the collections for a fresh page and counts the page view.
// A failed read keeps the previous list.
func (c *Coordinator) Load(ctx context.Context, s State) (State, error) {
	res, err := c.loader.Bootstrap(ctx)
	if res.BusinessesLoaded {
		s.Businesses = res.Businesses
	}
	if res.BlogsLoaded {
		s.Blogs = res.Blogs
	}
	if err != nil {
		c.log.Error("error fetching collections", zap.Error(err))
	}
	perr := c.tracker.RecordPageView(ctx)
	if perr != nil {
		c.log.Error("error tracking page view", zap.Error(perr))
	}
	return s, errors.Join(err, perr)
}

// RefreshStats reloads the counters shown on the dashboard.
func (c *Coordinator) RefreshStats(ctx context.Context, s State) (State, error) {
	st, err := c.tracker.Load(ctx)
	if err != nil {
		c.log.Error("error fetching stats", zap.Error(err))
		return s, err
	}
	s.Stats = st
	return s, nil
}

// SaveBusiness creates or updates the listing in the open form. Local state
// changes only once the store has accepted the write.
func (c *Coordinator) SaveBusiness(ctx context.Context, s State, draft content.Business) (State, error) {
	if !s.IsAdmin {
		return s, ErrNotAdmin
	}
	if s.BusinessForm == nil {
		c.log.Warn("business save without an open form")
		s.Alert = MsgSaveBusinessFailed
		return s, ErrNoForm
	}
	form := *s.BusinessForm
	form.Draft = draft
	form.Error = ""
	if err := draft.Validate(); err != nil {
		form.Error = err.Error()
		s.BusinessForm = &form
		return s, err
	}

	if form.EditID == "" {
		id, err := c.store.Insert(ctx, content.CollectionBusinesses, draft.Fields())
		if err != nil {
			return c.businessWriteFailed(s, &form, err)
		}
		draft.ID = id
		s.Businesses = append(withRoom(s.Businesses), draft)
	} else {
		if err := c.store.Update(ctx, content.CollectionBusinesses, form.EditID, draft.UpdateFields()); err != nil {
			return c.businessWriteFailed(s, &form, err)
		}
		draft.ID = form.EditID
		s.Businesses = replaceBusiness(s.Businesses, draft)
	}
	s.BusinessForm = nil
	return s, nil
}

func (c *Coordinator) businessWriteFailed(s State, form *BusinessForm, err error) (State, error) {
	c.log.Error("error saving business", zap.String("id", form.EditID), zap.Error(err))
	s.BusinessForm = form
	s.Alert = MsgSaveBusinessFailed
	return s, err
}

// DeleteBusiness removes a listing. Without confirmation nothing happens.
func (c *Coordinator) DeleteBusiness(ctx context.Context, s State, id string, confirmed bool) (State, error) {
	if !confirmed {
		return s, nil
	}
	if !s.IsAdmin {
		return s, ErrNotAdmin
	}
	if err := c.store.Delete(ctx, content.CollectionBusinesses, id); err != nil {
		c.log.Error("error deleting business", zap.String("id", id), zap.Error(err))
		s.Alert = MsgDeleteBusinessFailed
		return s, err
	}
	var out []content.Business
	for _, b := range s.Businesses {
		if b.ID != id {
			out = append(out, b)
		}
	}
	s.Businesses = out
	if s.PreviewBusinessID == id {
		s.PreviewBusinessID = ""
	}
	if s.BusinessForm != nil && s.BusinessForm.EditID == id {
		s.BusinessForm = nil
	}
	return s, nil
}

// SaveBlog creates or updates the post in the open form. New posts get
// today's date, the admin author and zero views. Edits never send or change
// those three fields.
func (c *Coordinator) SaveBlog(ctx context.Context, s State, draft content.BlogPost) (State, error) {
	if !s.IsAdmin {
		return s, ErrNotAdmin
	}
	if s.BlogForm == nil {
		c.log.Warn("blog save without an open form")
		s.Alert = MsgSavePostFailed
		return s, ErrNoForm
	}
	form := *s.BlogForm
	form.Draft = draft
	form.Error = ""
	if err := draft.Validate(); err != nil {
		form.Error = err.Error()
		s.BlogForm = &form
		return s, err
	}

	if form.EditID == "" {
		post := draft
		post.Date = c.now().Format(content.DateLayout)
		post.Author = content.AdminAuthor
		post.Views = 0
		id, err := c.store.Insert(ctx, content.CollectionBlogs, post.Fields())
		if err != nil {
			return c.blogWriteFailed(s, &form, err)
		}
		post.ID = id
		s.Blogs = append(withRoom(s.Blogs), post)
	} else {
		existing, ok := s.Post(form.EditID)
		if !ok {
			s.BlogForm = nil
			return s, fmt.Errorf("site: edit post %s: %w", form.EditID, docstore.ErrNotFound)
		}
		if err := c.store.Update(ctx, content.CollectionBlogs, form.EditID, draft.EditableFields()); err != nil {
			return c.blogWriteFailed(s, &form, err)
		}
		updated := existing
		updated.Title = draft.Title
		updated.Excerpt = draft.Excerpt
		updated.Content = draft.Content
		updated.Image = draft.Image
		s.Blogs = replacePost(s.Blogs, updated)
	}
	s.BlogForm = nil
	return s, nil
}

func (c *Coordinator) blogWriteFailed(s State, form *BlogForm, err error) (State, error) {
	c.log.Error("error saving blog", zap.String("id", form.EditID), zap.Error(err))
	s.BlogForm = form
	s.Alert = MsgSavePostFailed
	return s, err
}

// DeleteBlog removes a post. Without confirmation nothing happens.
func (c *Coordinator) DeleteBlog(ctx context.Context, s State, id string, confirmed bool) (State, error) {
	if !confirmed {
		return s, nil
	}
	if !s.IsAdmin {
		return s, ErrNotAdmin
	}
	if err := c.store.Delete(ctx, content.CollectionBlogs, id); err != nil {
		c.log.Error("error deleting blog", zap.String("id", id), zap.Error(err))
		s.Alert = MsgDeletePostFailed
		return s, err
	}
	var out []content.BlogPost
	for _, p := range s.Blogs {
		if p.ID != id {
			out = append(out, p)
		}
	}
	s.Blogs = out
	if s.SelectedPostID == id {
		s.SelectedPostID = ""
	}
	if s.BlogForm != nil && s.BlogForm.EditID == id {
		s.BlogForm = nil
	}
	return s, nil
}

// OpenPost navigates to a post and records the view. The local counter moves
// first and is moved back if the store rejects the write.
func (c *Coordinator) OpenPost(ctx context.Context, s State, id string) (State, error) {
	post, ok := s.Post(id)
	if !ok {
		return s, fmt.Errorf("site: open post %s: %w", id, docstore.ErrNotFound)
	}
	s = Reduce(s, OpenPost{ID: id})

	post.Views++
	s.Blogs = replacePost(s.Blogs, post)

	if err := c.tracker.RecordBlogView(ctx, id); err != nil {
		c.log.Error("error tracking blog view", zap.String("id", id), zap.Error(err))
		if cur, ok := s.Post(id); ok {
			cur.Views--
			s.Blogs = replacePost(s.Blogs, cur)
		}
		return s, err
	}
	return s, nil
}

// withRoom returns a copy of xs with room for one more element, so appends
// never write into a slice a snapshot may share.
func withRoom[T any](xs []T) []T {
	out := make([]T, len(xs), len(xs)+1)
	copy(out, xs)
	return out
}

func replaceBusiness(bs []content.Business, b content.Business) []content.Business {
	out := make([]content.Business, len(bs))
	for i, x := range bs {
		if x.ID == b.ID {
			x = b
		}
		out[i] = x
	}
	return out
}

func replacePost(ps []content.BlogPost, p content.BlogPost) []content.BlogPost {
	out := make([]content.BlogPost, len(ps))
	for i, x := range ps {
		if x.ID == p.ID {
			x = p
		}
		out[i] = x
	}
	return out
}
