package detail

import (
	"context"

	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/service/books"
	"github.com/Astemirdum/library-web/web/internal/toast"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

var _ Backend = (*books.Service)(nil)

type Backend interface {
	Resolve(ctx context.Context, key model.GroupKey) (model.Book, int, error)
	GetGroup(ctx context.Context, groupID string) (model.Book, int, error)
	AddCopy(ctx context.Context, bookID string, form model.CopyForm) (model.Book, int, error)
	UpdateGeneral(ctx context.Context, groupID string, info model.GeneralInfo) (model.Book, int, error)
	UpdateCopy(ctx context.Context, copyID string, form model.CopyForm) (model.BookCopy, int, error)
	DecreaseCopy(ctx context.Context, copyID string) (model.DecreaseCopyResponse, int, error)
	DeleteBook(ctx context.Context, id string) (int, error)
}

// ListCache is the cached catalog page that mutations reconcile into.
type ListCache interface {
	PatchSummary(key model.GroupKey, patch model.SummaryPatch) bool
	RemoveSummary(key model.GroupKey) bool
}

type Notifier interface {
	Push(kind toast.Kind, key string, args map[string]string) toast.Toast
}
