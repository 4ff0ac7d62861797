// Package precinct serves the Little Bamiyan community site: a business
// directory, a blog and an admin dashboard, rendered on the server and driven
// by htmx. Every browser page load owns a page instance that holds its state.
package precinct

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eringen/precinct/auth"
	"github.com/eringen/precinct/docstore"
	"github.com/eringen/precinct/seed"
	"github.com/eringen/precinct/site"
	"github.com/eringen/precinct/stats"
)

// App wires the store, auth provider, page instances, handlers and middleware.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Store     *docstore.Store
	Auth      *auth.Provider
	Stats     *stats.Recorder
	Seeder    *seed.Seeder
	Instances *Registry

	coord        *site.Coordinator
	loginLimiter *LoginLimiter
	log          *zap.Logger
	metrics      *prometheus.Registry
	stopCleanup  func()
	ready        bool
}

// New creates an App. Nothing is opened until Setup or Start.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		log:    zap.NewNop(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup opens the store and registers middleware and routes.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}

	store, err := docstore.Open(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("precinct: init store: %w", err)
	}
	a.Store = store

	if a.metrics == nil {
		a.metrics = prometheus.NewRegistry()
	}
	a.Stats, err = stats.NewRecorder(store, a.metrics)
	if err != nil {
		return fmt.Errorf("precinct: init stats: %w", err)
	}

	a.Auth = auth.NewProvider(store, []byte(a.Config.AuthSecret), auth.WithTTL(a.Config.SessionTTL))
	a.Seeder = seed.New(store, a.log)
	a.coord = site.NewCoordinator(store, a.Seeder, a.Stats, a.log)
	a.Instances = NewRegistry(a.Config.InstanceTTL, a.log)
	a.loginLimiter = NewLoginLimiter(a.Config.LoginAttempts, a.Config.LoginWindow)

	live := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "precinct",
		Name:      "page_instances",
		Help:      "Page instances currently held in memory.",
	}, func() float64 { return float64(a.Instances.Len()) })
	if err := a.metrics.Register(live); err != nil {
		return fmt.Errorf("precinct: register metrics: %w", err)
	}

	a.setupMiddleware()
	a.setupRoutes()
	a.ready = true
	return nil
}

// Start sets the app up, starts the cleanup scheduler and serves until the
// server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.stopCleanup = a.StartCleanupScheduler(time.Minute)

	a.log.Info("listening", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.URL))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/assets/*", echo.WrapHandler(http.StripPrefix("/assets/", http.FileServer(http.FS(assets)))))
	e.Static("/uploads", filepath.Join(a.Config.StaticDir, uploadsSubdir))

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	if a.Config.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{DisableCompression: true})))
	}

	e.GET("/", a.handleHome)

	// htmx events for the page instance bound to this browser.
	e.POST("/nav/:page", a.withInstance(a.handleNavigate))
	e.POST("/section/:section", a.withInstance(a.handleSection))
	e.POST("/blog/:id/open", a.withInstance(a.handleOpenPost))
	e.POST("/blog/close", a.withInstance(dispatch(site.ClosePost{})))
	e.POST("/business/:id/preview", a.withInstance(a.handlePreview))
	e.POST("/business/preview/close", a.withInstance(dispatch(site.ClosePreview{})))
	e.POST("/business/filter/:category", a.withInstance(a.handleFilter))
	e.POST("/alert/dismiss", a.withInstance(dispatch(site.DismissAlert{})))
	e.POST("/login", a.withInstance(a.handleLogin))
	e.POST("/logout", a.withInstance(a.handleLogout))

	admin := e.Group("/admin")
	admin.POST("/tab/:tab", a.withInstance(a.handleSelectTab))
	admin.POST("/business/new", a.withInstance(dispatch(site.OpenBusinessForm{})))
	admin.POST("/business/:id/edit", a.withInstance(a.handleEditBusiness))
	admin.POST("/business/save", a.withInstance(a.handleSaveBusiness))
	admin.POST("/business/:id/delete", a.withInstance(a.handleDeleteBusiness))
	admin.POST("/business/form/close", a.withInstance(dispatch(site.CloseBusinessForm{})))
	admin.POST("/blog/new", a.withInstance(dispatch(site.OpenBlogForm{})))
	admin.POST("/blog/:id/edit", a.withInstance(a.handleEditBlog))
	admin.POST("/blog/save", a.withInstance(a.handleSaveBlog))
	admin.POST("/blog/:id/delete", a.withInstance(a.handleDeleteBlog))
	admin.POST("/blog/form/close", a.withInstance(dispatch(site.CloseBlogForm{})))
	admin.POST("/images/upload", a.handleImageUpload, a.requireAdmin)
	admin.GET("/stats.json", a.handleStatsJSON, a.requireAdmin)
}

// StartCleanupScheduler evicts idle page instances, prunes the login limiter
// and purges expired revoked tokens every interval. Returns a stop function.
func (a *App) StartCleanupScheduler(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		for {
			select {
			case <-ticker.C:
				a.cleanup()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}

func (a *App) cleanup() {
	if n := a.Instances.Evict(); n > 0 {
		a.log.Debug("evicted idle page instances", zap.Int("count", n))
	}
	a.loginLimiter.Prune()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if n, err := a.Auth.PurgeRevoked(ctx); err != nil {
		a.log.Error("purge revoked tokens", zap.Error(err))
	} else if n > 0 {
		a.log.Debug("purged revoked tokens", zap.Int("count", n))
	}
}

// Close stops the scheduler, closes every page instance and the store.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
		a.stopCleanup = nil
	}
	if a.Instances != nil {
		a.Instances.CloseAll()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
