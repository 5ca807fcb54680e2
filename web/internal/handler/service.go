package handler

import (
	"context"

	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/service/books"
	"github.com/Astemirdum/library-web/web/internal/service/users"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

var (
	_ BooksService = (*books.Service)(nil)
	_ UsersService = (*users.Service)(nil)
	_ EventLog     = (*eventLog)(nil)
)

// BooksService covers the calls made outside of a workspace session.
type BooksService interface {
	CreateBook(ctx context.Context, form model.CreateBookForm) (model.Book, int, error)
	Categories(ctx context.Context) ([]string, int, error)
	Companies(ctx context.Context) ([]string, int, error)
}

type UsersService interface {
	Login(ctx context.Context, form model.LoginForm) (model.AuthResponse, int, error)
	Signup(ctx context.Context, form model.SignupForm) (model.AuthResponse, int, error)
}

type EventLog interface {
	Publish(ev model.UIEvent) error
}
