package precinct

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/precinct/auth"
	"github.com/eringen/precinct/site"
	"github.com/eringen/precinct/views"
)

const msgTooManyAttempts = "Too many login attempts. Try again later."

// headerInstance carries the page instance id rendered into each document,
// so every tab talks to its own instance.
const headerInstance = "X-Page-Instance"

var errLoginThrottled = errors.New("precinct: login throttled")

// instanceHandler runs one event against the page instance of the request and
// returns the state to render. Errors are logged; their user-facing outcome is
// already part of the state.
type instanceHandler func(c echo.Context, in *site.Instance) (site.State, error)

func (a *App) page(c echo.Context, id string, s site.State) views.Page {
	return views.Page{
		Site: views.SiteConfig{
			Name:        a.Config.Name,
			URL:         a.Config.URL,
			Description: a.Config.Description,
		},
		CSRF:     CsrfToken(c),
		Instance: id,
		State:    s,
	}
}

// handleHome starts a new page instance for this load and renders the whole
// document. Instances of other tabs stay until they go idle.
func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}

	in := site.NewInstance(uuid.NewString(), auth.NewGate(a.Auth), a.coord, a.log)
	a.Instances.Put(in)

	token, _ := sess.Values[sessionTokenKey].(string)
	if s := in.Sync(ctx, token); token != "" && !s.IsAdmin {
		delete(sess.Values, sessionTokenKey)
	}

	s, err := in.Load(ctx)
	if err != nil {
		a.log.Warn("page load incomplete", zap.String("instance", in.ID), zap.Error(err))
	}
	if id := c.QueryParam("post"); id != "" {
		if s, err = in.OpenPost(ctx, id); err != nil {
			a.log.Warn("open post", zap.String("post", id), zap.Error(err))
		}
	}

	sess.Values[sessionInstanceKey] = in.ID
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return Render(c, views.Document(a.page(c, in.ID, s)))
}

// withInstance resolves the page instance of the requesting tab, brings its
// session in line with the cookie, runs h and re-renders #app. A missing or
// evicted instance makes htmx reload the page.
func (a *App) withInstance(h instanceHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		in, ok := a.Instances.Get(a.instanceID(c))
		if !ok {
			c.Response().Header().Set("HX-Refresh", "true")
			return c.NoContent(http.StatusNoContent)
		}
		in.Sync(ctx, sessionString(c, sessionTokenKey))

		s, err := h(c, in)
		if err != nil {
			a.log.Info("event rejected",
				zap.String("instance", in.ID),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		if s.ScrollTarget != "" {
			c.Response().Header().Set("HX-Trigger-After-Settle", scrollTrigger(s.ScrollTarget))
			in.Dispatch(ctx, site.ScrollDone{})
		}
		return Render(c, views.App(a.page(c, in.ID, s)))
	}
}

// instanceID prefers the id the tab sends and falls back to the browser's
// latest load for requests made without htmx headers.
func (a *App) instanceID(c echo.Context) string {
	if id := c.Request().Header.Get(headerInstance); id != "" {
		return id
	}
	return sessionString(c, sessionInstanceKey)
}

func scrollTrigger(section string) string {
	b, _ := json.Marshal(map[string]string{"precinct:scroll": section})
	return string(b)
}

// dispatch handles events that need nothing but the reducer.
func dispatch(action site.Action) instanceHandler {
	return func(c echo.Context, in *site.Instance) (site.State, error) {
		return in.Dispatch(c.Request().Context(), action), nil
	}
}

func (a *App) handleNavigate(c echo.Context, in *site.Instance) (site.State, error) {
	return in.Dispatch(c.Request().Context(), site.Navigate{Page: site.Page(c.Param("page"))}), nil
}

func (a *App) handleSection(c echo.Context, in *site.Instance) (site.State, error) {
	return in.Dispatch(c.Request().Context(), site.ScrollTo{Section: c.Param("section")}), nil
}

func (a *App) handleOpenPost(c echo.Context, in *site.Instance) (site.State, error) {
	return in.OpenPost(c.Request().Context(), c.Param("id"))
}

func (a *App) handlePreview(c echo.Context, in *site.Instance) (site.State, error) {
	return in.Dispatch(c.Request().Context(), site.PreviewBusiness{ID: c.Param("id")}), nil
}

func (a *App) handleFilter(c echo.Context, in *site.Instance) (site.State, error) {
	category := c.Param("category")
	if category == "all" {
		category = ""
	}
	return in.Dispatch(c.Request().Context(), site.FilterCategory{Category: category}), nil
}

func (a *App) handleLogin(c echo.Context, in *site.Instance) (site.State, error) {
	ctx := c.Request().Context()
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return in.Dispatch(ctx, site.LoginFailed{Message: msgTooManyAttempts}), errLoginThrottled
	}
	s, sess, err := in.Login(ctx, c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		a.loginLimiter.Record(ip)
		return s, err
	}
	return s, setSessionValue(c, sessionTokenKey, sess.Token)
}

func (a *App) handleLogout(c echo.Context, in *site.Instance) (site.State, error) {
	s, err := in.Logout(c.Request().Context())
	return s, errors.Join(err, setSessionValue(c, sessionTokenKey, ""))
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: " + BuildURL(a.Config.URL, "sitemap.xml") + "\n"
	return c.String(http.StatusOK, body)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Seeder.Blogs(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Seeder.Blogs(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	cfg := views.SiteConfig{Name: a.Config.Name, URL: a.Config.URL}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(cfg))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.log.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		_ = RenderStatus(c, code, views.ServerError(cfg))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
