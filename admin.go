package precinct

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/precinct/content"
	"github.com/eringen/precinct/site"
)

func (a *App) handleSelectTab(c echo.Context, in *site.Instance) (site.State, error) {
	return in.Dispatch(c.Request().Context(), site.SelectTab{Tab: site.AdminTab(c.Param("tab"))}), nil
}

func (a *App) handleEditBusiness(c echo.Context, in *site.Instance) (site.State, error) {
	return in.Dispatch(c.Request().Context(), site.OpenBusinessForm{EditID: c.Param("id")}), nil
}

func (a *App) handleSaveBusiness(c echo.Context, in *site.Instance) (site.State, error) {
	return in.SaveBusiness(c.Request().Context(), businessDraft(c))
}

func (a *App) handleDeleteBusiness(c echo.Context, in *site.Instance) (site.State, error) {
	return in.DeleteBusiness(c.Request().Context(), c.Param("id"), confirmed(c))
}

func (a *App) handleEditBlog(c echo.Context, in *site.Instance) (site.State, error) {
	return in.Dispatch(c.Request().Context(), site.OpenBlogForm{EditID: c.Param("id")}), nil
}

func (a *App) handleSaveBlog(c echo.Context, in *site.Instance) (site.State, error) {
	return in.SaveBlog(c.Request().Context(), blogDraft(c))
}

func (a *App) handleDeleteBlog(c echo.Context, in *site.Instance) (site.State, error) {
	return in.DeleteBlog(c.Request().Context(), c.Param("id"), confirmed(c))
}

func (a *App) handleStatsJSON(c echo.Context) error {
	s, err := a.Stats.Load(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

// confirmed reports whether the browser's confirm dialog was accepted.
func confirmed(c echo.Context) bool {
	return c.FormValue("confirm") == "yes"
}

func formValue(c echo.Context, name string) string {
	return strings.TrimSpace(c.FormValue(name))
}

func businessDraft(c echo.Context) content.Business {
	rating, err := strconv.ParseFloat(formValue(c, "rating"), 64)
	if err != nil {
		rating = -1
	}
	return content.Business{
		Name:        formValue(c, "name"),
		Category:    formValue(c, "category"),
		Description: formValue(c, "description"),
		Address:     formValue(c, "address"),
		Phone:       formValue(c, "phone"),
		Rating:      rating,
		Image:       formValue(c, "image"),
		Website:     formValue(c, "website"),
		Facebook:    formValue(c, "facebook"),
		Instagram:   formValue(c, "instagram"),
	}
}

func blogDraft(c echo.Context) content.BlogPost {
	return content.BlogPost{
		Title:   formValue(c, "title"),
		Excerpt: formValue(c, "excerpt"),
		Content: strings.ReplaceAll(formValue(c, "content"), "\r\n", "\n"),
		Image:   formValue(c, "image"),
	}
}
