package borrow

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Astemirdum/library-web/web/config"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/service/client"
	"go.uber.org/zap"
)

const endpoint = "/api/borrow"

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

func (s *Service) Borrow(ctx context.Context, form model.BorrowForm) (model.BorrowRecord, int, error) {
	var rec model.BorrowRecord
	code, err := s.Do(ctx, http.MethodPost, endpoint+"/borrow", nil, form, &rec)
	return rec, code, err
}

func (s *Service) Return(ctx context.Context, recordID string) (model.BorrowRecord, int, error) {
	var rec model.BorrowRecord
	code, err := s.Do(ctx, http.MethodPost, endpoint+"/return/"+url.PathEscape(recordID), nil, nil, &rec)
	return rec, code, err
}

func (s *Service) Active(ctx context.Context, q model.LoanQuery) (model.LoanPage, int, error) {
	return s.loans(ctx, endpoint+"/active", q)
}

func (s *Service) History(ctx context.Context, q model.LoanQuery) (model.LoanPage, int, error) {
	return s.loans(ctx, endpoint+"/history", q)
}

func (s *Service) loans(ctx context.Context, path string, q model.LoanQuery) (model.LoanPage, int, error) {
	var page model.LoanPage
	code, err := s.Do(ctx, http.MethodGet, path, q.Values(), nil, &page)
	if err != nil {
		return model.LoanPage{}, code, err
	}
	if page.Records == nil {
		page.Records = []model.BorrowRecord{}
	}
	return page, code, nil
}

func (s *Service) BorrowerNames(ctx context.Context) ([]string, int, error) {
	var names []string
	code, err := s.Do(ctx, http.MethodGet, endpoint+"/borrower-names", nil, nil, &names)
	return names, code, err
}
