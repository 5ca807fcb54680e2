package books

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Astemirdum/library-web/web/config"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/service/client"
	"go.uber.org/zap"
)

const endpoint = "/api/books"

type Service struct {
	*client.Client
	log *zap.Logger
}

func NewService(log *zap.Logger, cfg config.Backend) *Service {
	return &Service{
		Client: client.New(log, cfg),
		log:    log,
	}
}

func (s *Service) ListBooks(ctx context.Context, q model.BookQuery) (model.BookPage, int, error) {
	var page model.BookPage
	code, err := s.Do(ctx, http.MethodGet, endpoint, q.Values(), nil, &page)
	if err != nil {
		return model.BookPage{}, code, err
	}
	if page.Books == nil {
		page.Books = []model.Book{}
	}
	return page, code, nil
}

func (s *Service) GetBook(ctx context.Context, id string) (model.Book, int, error) {
	var book model.Book
	code, err := s.Do(ctx, http.MethodGet, endpoint+"/"+url.PathEscape(id), nil, nil, &book)
	return book, code, err
}

func (s *Service) GetGroup(ctx context.Context, groupID string) (model.Book, int, error) {
	var book model.Book
	code, err := s.Do(ctx, http.MethodGet, endpoint+"/group/"+url.PathEscape(groupID), nil, nil, &book)
	return book, code, err
}

// Resolve fetches the full group of a list summary, by groupId when known.
func (s *Service) Resolve(ctx context.Context, key model.GroupKey) (model.Book, int, error) {
	if key.GroupID != "" {
		return s.GetGroup(ctx, key.GroupID)
	}
	return s.GetBook(ctx, key.ID)
}

func (s *Service) CreateBook(ctx context.Context, form model.CreateBookForm) (model.Book, int, error) {
	var book model.Book
	code, err := s.Do(ctx, http.MethodPost, endpoint, nil, newCreateRequest(form), &book)
	return book, code, err
}

func (s *Service) AddCopy(ctx context.Context, bookID string, form model.CopyForm) (model.Book, int, error) {
	var book model.Book
	code, err := s.Do(ctx, http.MethodPost, endpoint+"/"+url.PathEscape(bookID)+"/copy", nil, copyRequestOf(form), &book)
	return book, code, err
}

func (s *Service) UpdateGeneral(ctx context.Context, groupID string, info model.GeneralInfo) (model.Book, int, error) {
	var book model.Book
	code, err := s.Do(ctx, http.MethodPut, endpoint+"/"+url.PathEscape(groupID)+"/general", nil, info, &book)
	return book, code, err
}

func (s *Service) UpdateCopy(ctx context.Context, copyID string, form model.CopyForm) (model.BookCopy, int, error) {
	var c model.BookCopy
	code, err := s.Do(ctx, http.MethodPut, endpoint+"/"+url.PathEscape(copyID)+"/copy", nil, copyRequestOf(form), &c)
	return c, code, err
}

func (s *Service) DecreaseCopy(ctx context.Context, copyID string) (model.DecreaseCopyResponse, int, error) {
	var resp model.DecreaseCopyResponse
	code, err := s.Do(ctx, http.MethodPost, endpoint+"/"+url.PathEscape(copyID)+"/decrease-copy", nil, nil, &resp)
	return resp, code, err
}

func (s *Service) DeleteBook(ctx context.Context, id string) (int, error) {
	return s.Do(ctx, http.MethodDelete, endpoint+"/"+url.PathEscape(id), nil, nil, nil)
}

func (s *Service) Categories(ctx context.Context) ([]string, int, error) {
	var list []string
	code, err := s.Do(ctx, http.MethodGet, endpoint+"/categories", nil, nil, &list)
	return list, code, err
}

func (s *Service) Companies(ctx context.Context) ([]string, int, error) {
	var list []string
	code, err := s.Do(ctx, http.MethodGet, endpoint+"/companies", nil, nil, &list)
	return list, code, err
}
