// Package stats keeps the site-wide view counters in the analytics
// singleton and mirrors them as Prometheus counters.
package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/precinct/content"
	"github.com/eringen/precinct/docstore"
)

// Recorder records page and post views.
type Recorder struct {
	store *docstore.Store

	pageViews prometheus.Counter
	blogViews prometheus.Counter
	failures  *prometheus.CounterVec
}

// NewRecorder returns a Recorder. When reg is non-nil the counters are
// registered with it.
func NewRecorder(store *docstore.Store, reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		store: store,
		pageViews: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "precinct",
			Name:      "page_views_total",
			Help:      "Full application loads recorded since start.",
		}),
		blogViews: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "precinct",
			Name:      "blog_views_total",
			Help:      "Blog post detail views recorded since start.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "precinct",
			Name:      "view_record_failures_total",
			Help:      "View counter writes that failed.",
		}, []string{"kind"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{r.pageViews, r.blogViews, r.failures} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("stats: register metrics: %w", err)
			}
		}
	}
	return r, nil
}

func (r *Recorder) ensure(ctx context.Context) error {
	return r.store.Ensure(ctx, content.CollectionAnalytics, content.StatsDocID, docstore.Fields{
		"pageViews": 0,
		"blogViews": 0,
	})
}

// RecordPageView counts one full application load.
func (r *Recorder) RecordPageView(ctx context.Context) error {
	if err := r.ensure(ctx); err != nil {
		r.failures.WithLabelValues("page").Inc()
		return fmt.Errorf("stats: ensure singleton: %w", err)
	}
	if err := r.store.Increment(ctx, content.CollectionAnalytics, content.StatsDocID, "pageViews"); err != nil {
		r.failures.WithLabelValues("page").Inc()
		return fmt.Errorf("stats: page view: %w", err)
	}
	r.pageViews.Inc()
	return nil
}

// RecordBlogView counts one detail view of a post. The post counter and the
// site total move together or not at all.
func (r *Recorder) RecordBlogView(ctx context.Context, postID string) error {
	if err := r.ensure(ctx); err != nil {
		r.failures.WithLabelValues("blog").Inc()
		return fmt.Errorf("stats: ensure singleton: %w", err)
	}
	err := r.store.IncrementAll(ctx,
		docstore.Counter{Collection: content.CollectionBlogs, ID: postID, Field: "views"},
		docstore.Counter{Collection: content.CollectionAnalytics, ID: content.StatsDocID, Field: "blogViews"},
	)
	if err != nil {
		r.failures.WithLabelValues("blog").Inc()
		return fmt.Errorf("stats: blog view %s: %w", postID, err)
	}
	r.blogViews.Inc()
	return nil
}

// Load reads the singleton. A missing singleton reads as zero.
func (r *Recorder) Load(ctx context.Context) (content.SiteStats, error) {
	doc, err := r.store.Get(ctx, content.CollectionAnalytics, content.StatsDocID)
	if errors.Is(err, docstore.ErrNotFound) {
		return content.SiteStats{}, nil
	}
	if err != nil {
		return content.SiteStats{}, fmt.Errorf("stats: load: %w", err)
	}
	return content.StatsFromDoc(doc), nil
}
