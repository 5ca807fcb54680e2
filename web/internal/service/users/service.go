package users

import (
	"context"
	"net/http"

	"github.com/Astemirdum/library-web/web/config"
	"github.com/Astemirdum/library-web/web/internal/errs"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/service/client"
	"go.uber.org/zap"
)

const endpoint = "/api/users"

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

// Login exchanges credentials for a session token.
func (s *Service) Login(ctx context.Context, form model.LoginForm) (model.AuthResponse, int, error) {
	var resp model.AuthResponse
	code, err := s.Do(ctx, http.MethodPost, endpoint+"/login", nil, form, &resp)
	if err != nil {
		return model.AuthResponse{}, code, err
	}
	if !resp.Success || resp.Token == "" {
		return resp, http.StatusUnauthorized, &errs.StatusError{Code: http.StatusUnauthorized, Message: resp.Message}
	}
	return resp, code, nil
}

func (s *Service) Signup(ctx context.Context, form model.SignupForm) (model.AuthResponse, int, error) {
	var resp model.AuthResponse
	code, err := s.Do(ctx, http.MethodPost, endpoint+"/signup", nil, form, &resp)
	return resp, code, err
}
