// Package seed loads the directory and blog collections, populating each one
// with sample records the first time it is found empty.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/precinct/content"
	"github.com/eringen/precinct/docstore"
)

// Seeder bootstraps collections from the document store.
type Seeder struct {
	store *docstore.Store
	log   *zap.Logger
}

// New returns a Seeder. A nil logger discards output.
func New(store *docstore.Store, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{store: store, log: log}
}

// Result holds what Bootstrap read. A collection whose read failed is left
// nil and its Loaded flag false.
type Result struct {
	Businesses       []content.Business
	Blogs            []content.BlogPost
	BusinessesLoaded bool
	BlogsLoaded      bool
}

func markerKey(collection string) string {
	return "seed:" + collection
}

// Bootstrap loads both collections concurrently, seeding empty ones. The
// returned error is the first failure; the other collection may still be
// loaded.
func (s *Seeder) Bootstrap(ctx context.Context) (Result, error) {
	var (
		res Result
		g   errgroup.Group
	)
	g.Go(func() error {
		bs, err := s.Businesses(ctx)
		if err != nil {
			return err
		}
		res.Businesses, res.BusinessesLoaded = bs, true
		return nil
	})
	g.Go(func() error {
		ps, err := s.Blogs(ctx)
		if err != nil {
			return err
		}
		res.Blogs, res.BlogsLoaded = ps, true
		return nil
	})
	err := g.Wait()
	return res, err
}

// Businesses returns the directory in insertion order.
func (s *Seeder) Businesses(ctx context.Context) ([]content.Business, error) {
	docs, err := s.loadOrSeed(ctx, content.CollectionBusinesses, businessFields(SampleBusinesses()))
	if err != nil {
		return nil, err
	}
	out := make([]content.Business, 0, len(docs))
	for _, d := range docs {
		out = append(out, content.BusinessFromDoc(d))
	}
	return out, nil
}

// Blogs returns posts newest first.
func (s *Seeder) Blogs(ctx context.Context) ([]content.BlogPost, error) {
	docs, err := s.loadOrSeed(ctx, content.CollectionBlogs, postFields(SamplePosts()), docstore.OrderBy("date", true))
	if err != nil {
		return nil, err
	}
	out := make([]content.BlogPost, 0, len(docs))
	for _, d := range docs {
		out = append(out, content.BlogPostFromDoc(d))
	}
	return out, nil
}

// Seed populates every empty, never-seeded collection without reading them
// back. It reports how many collections were seeded.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	n := 0
	for coll, batch := range map[string][]docstore.Fields{
		content.CollectionBusinesses: businessFields(SampleBusinesses()),
		content.CollectionBlogs:      postFields(SamplePosts()),
	} {
		ran, err := s.seedOnce(ctx, coll, batch)
		if err != nil {
			return n, err
		}
		if ran {
			n++
		}
	}
	return n, nil
}

func (s *Seeder) loadOrSeed(ctx context.Context, collection string, batch []docstore.Fields, opts ...docstore.ListOption) ([]docstore.Doc, error) {
	docs, err := s.store.List(ctx, collection, opts...)
	if err != nil {
		return nil, fmt.Errorf("seed: list %s: %w", collection, err)
	}
	if len(docs) > 0 {
		return docs, nil
	}
	// A collection emptied after seeding stays empty.
	if marked, err := s.store.Marked(ctx, markerKey(collection)); err == nil && marked {
		return docs, nil
	}
	if _, err := s.seedOnce(ctx, collection, batch); err != nil {
		return nil, err
	}
	// Re-read so records carry store-assigned ids, whether this call or a
	// concurrent one did the seeding.
	docs, err = s.store.List(ctx, collection, opts...)
	if err != nil {
		return nil, fmt.Errorf("seed: reload %s: %w", collection, err)
	}
	return docs, nil
}

func (s *Seeder) seedOnce(ctx context.Context, collection string, batch []docstore.Fields) (bool, error) {
	inserted := 0
	ran, err := s.store.RunOnce(ctx, markerKey(collection), func(ctx context.Context, tx *docstore.Tx) error {
		n, err := tx.Count(ctx, collection)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, f := range batch {
			if _, err := tx.Insert(ctx, collection, f); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed: %s: %w", collection, err)
	}
	if ran && inserted > 0 {
		s.log.Info("seeded collection", zap.String("collection", collection), zap.Int("records", inserted))
	}
	return ran && inserted > 0, nil
}

func businessFields(bs []content.Business) []docstore.Fields {
	out := make([]docstore.Fields, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.Fields())
	}
	return out
}

func postFields(ps []content.BlogPost) []docstore.Fields {
	out := make([]docstore.Fields, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Fields())
	}
	return out
}
