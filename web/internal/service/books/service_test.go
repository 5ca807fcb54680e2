package books_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Astemirdum/library-web/web/config"
	"github.com/Astemirdum/library-web/web/internal/errs"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/service/books"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T, e *echo.Echo) *books.Service {
	t.Helper()
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return books.NewService(zap.NewNop(), config.Backend{BaseURL: srv.URL, Timeout: time.Second})
}

func TestService_ListBooks(t *testing.T) {
	e := echo.New()
	e.GET("/api/books", func(c echo.Context) error {
		require.Equal(t, "2", c.QueryParam("page"))
		require.Equal(t, "hobbit", c.QueryParam("search"))
		require.Equal(t, "fantasy,classic", c.QueryParam("categories"))
		require.Equal(t, "", c.QueryParam("company"))
		return c.JSON(http.StatusOK, model.BookPage{
			Books:       []model.Book{{ID: "b1", GroupID: "g1", Title: "The Hobbit", CopiesCount: 3}},
			TotalPages:  4,
			CurrentPage: 2,
		})
	})
	svc := newService(t, e)

	page, code, err := svc.ListBooks(context.Background(), model.BookQuery{
		Page:       2,
		Search:     "hobbit",
		Categories: []string{"fantasy", "classic"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 4, page.TotalPages)
	require.Len(t, page.Books, 1)
	require.Equal(t, 3, page.Books[0].CopiesCount)
}

func TestService_ListBooksEmpty(t *testing.T) {
	e := echo.New()
	e.GET("/api/books", func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(`{"totalPages":0,"currentPage":1}`))
	})
	page, _, err := newService(t, e).ListBooks(context.Background(), model.BookQuery{})
	require.NoError(t, err)
	require.NotNil(t, page.Books)
	require.Empty(t, page.Books)
}

func TestService_Resolve(t *testing.T) {
	e := echo.New()
	e.GET("/api/books/group/:groupId", func(c echo.Context) error {
		return c.JSON(http.StatusOK, model.Book{ID: "b1", GroupID: c.Param("groupId"), Copies: []model.BookCopy{{ID: "c1"}}})
	})
	e.GET("/api/books/:id", func(c echo.Context) error {
		return c.JSON(http.StatusOK, model.Book{ID: c.Param("id")})
	})
	svc := newService(t, e)

	book, _, err := svc.Resolve(context.Background(), model.GroupKey{GroupID: "g1", ID: "b1"})
	require.NoError(t, err)
	require.Equal(t, "g1", book.GroupID)
	require.Len(t, book.Copies, 1)

	book, _, err = svc.Resolve(context.Background(), model.GroupKey{ID: "b9"})
	require.NoError(t, err)
	require.Equal(t, "b9", book.ID)
}

func TestService_Mutations(t *testing.T) {
	e := echo.New()
	e.POST("/api/books", func(c echo.Context) error {
		var body map[string]any
		require.NoError(t, json.NewDecoder(c.Request().Body).Decode(&body))
		require.Equal(t, "The Hobbit", body["title"])
		require.Equal(t, 12.5, body["cost"])
		require.Equal(t, "HB-1", body["code"])
		return c.JSON(http.StatusCreated, model.Book{ID: "b1", GroupID: "g1", CopiesCount: 1})
	})
	e.POST("/api/books/:id/copy", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, model.Book{ID: "b2", GroupID: "g1", CopiesCount: 2})
	})
	e.PUT("/api/books/:groupId/general", func(c echo.Context) error {
		var info model.GeneralInfo
		require.NoError(t, c.Bind(&info))
		return c.JSON(http.StatusOK, model.Book{ID: "b1", GroupID: c.Param("groupId"), Title: info.Title})
	})
	e.PUT("/api/books/:copyId/copy", func(c echo.Context) error {
		var body map[string]any
		require.NoError(t, json.NewDecoder(c.Request().Body).Decode(&body))
		return c.JSON(http.StatusOK, model.BookCopy{ID: c.Param("copyId"), Location: body["location"].(string)})
	})
	e.POST("/api/books/:id/decrease-copy", func(c echo.Context) error {
		if c.Param("id") == "gone" {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Copy not found"})
		}
		return c.JSON(http.StatusOK, model.DecreaseCopyResponse{Message: "ok", GroupID: "g1", CopiesCount: 1})
	})
	e.DELETE("/api/books/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	svc := newService(t, e)
	ctx := context.Background()

	created, code, err := svc.CreateBook(ctx, model.CreateBookForm{
		GeneralInfo: model.GeneralInfo{Title: "The Hobbit", Author: "Tolkien"},
		CopyForm:    model.CopyForm{Cost: "12.50", Location: "A1", InvoiceCode: "F-1", DateAcquired: "2024-01-01", Condition: model.ConditionNew},
		Code:        "HB-1",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, 1, created.CopiesCount)

	added, _, err := svc.AddCopy(ctx, "b1", model.CopyForm{Cost: "3"})
	require.NoError(t, err)
	require.Equal(t, 2, added.CopiesCount)

	updated, _, err := svc.UpdateGeneral(ctx, "g1", model.GeneralInfo{Title: "New"})
	require.NoError(t, err)
	require.Equal(t, "New", updated.Title)

	cp, _, err := svc.UpdateCopy(ctx, "c1", model.CopyForm{Location: "B2"})
	require.NoError(t, err)
	require.Equal(t, "B2", cp.Location)

	dec, _, err := svc.DecreaseCopy(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, 1, dec.CopiesCount)

	_, code, err = svc.DecreaseCopy(ctx, "gone")
	require.Equal(t, http.StatusNotFound, code)
	require.True(t, errors.Is(err, errs.ErrNotFound))

	code, err = svc.DeleteBook(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, code)
}

func TestService_Facets(t *testing.T) {
	e := echo.New()
	e.GET("/api/books/categories", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []string{"fantasy", "science"})
	})
	e.GET("/api/books/companies", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []string{"acme"})
	})
	svc := newService(t, e)

	cats, _, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"fantasy", "science"}, cats)

	comps, _, err := svc.Companies(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"acme"}, comps)
}
