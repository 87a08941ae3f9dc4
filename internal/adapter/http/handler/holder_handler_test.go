package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/adapter/http/dto"
	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

type holderServiceStub struct {
	createFn   func(ctx context.Context, input usecase.CreateHolderInput) (*domain.Holder, error)
	getFn      func(ctx context.Context, ref string) (*domain.Holder, error)
	listFn     func(ctx context.Context) ([]*domain.Holder, error)
	accountsFn func(ctx context.Context, ref string) ([]*domain.Account, error)
	capitalFn  func(ctx context.Context, ref, currency string) (decimal.Decimal, error)
	deleteFn   func(ctx context.Context, ref string) error
}

func (s *holderServiceStub) CreateHolder(ctx context.Context, input usecase.CreateHolderInput) (*domain.Holder, error) {
	if s.createFn == nil {
		return nil, errUnexpectedCall
	}
	return s.createFn(ctx, input)
}

func (s *holderServiceStub) GetHolder(ctx context.Context, ref string) (*domain.Holder, error) {
	if s.getFn == nil {
		return nil, errUnexpectedCall
	}
	return s.getFn(ctx, ref)
}

func (s *holderServiceStub) ListHolders(ctx context.Context) ([]*domain.Holder, error) {
	if s.listFn == nil {
		return nil, errUnexpectedCall
	}
	return s.listFn(ctx)
}

func (s *holderServiceStub) ListAccounts(ctx context.Context, ref string) ([]*domain.Account, error) {
	if s.accountsFn == nil {
		return nil, errUnexpectedCall
	}
	return s.accountsFn(ctx, ref)
}

func (s *holderServiceStub) Capital(ctx context.Context, ref, currency string) (decimal.Decimal, error) {
	if s.capitalFn == nil {
		return decimal.Zero, errUnexpectedCall
	}
	return s.capitalFn(ctx, ref, currency)
}

func (s *holderServiceStub) DeleteHolder(ctx context.Context, ref string) error {
	if s.deleteFn == nil {
		return errUnexpectedCall
	}
	return s.deleteFn(ctx, ref)
}

func TestHolderHandler_Create(t *testing.T) {
	handler := NewHolderHandler(&holderServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateHolderInput) (*domain.Holder, error) {
			return &domain.Holder{ID: "h1", Key: input.Key, Name: input.Name}, nil
		},
	}, "ARS")

	req := httptest.NewRequest(http.MethodPost, "/holders", bytes.NewBufferString(`{"key":"ana","name":"Ana"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp dto.HolderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Key != "ana" || resp.DebtorIDs == nil {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestHolderHandler_Capital(t *testing.T) {
	handler := NewHolderHandler(&holderServiceStub{
		getFn: func(ctx context.Context, ref string) (*domain.Holder, error) {
			return &domain.Holder{ID: "h1", Key: ref}, nil
		},
		capitalFn: func(ctx context.Context, ref, currency string) (decimal.Decimal, error) {
			if ref != "h1" || currency != "" {
				t.Fatalf("unexpected call ref=%s currency=%s", ref, currency)
			}
			return decimal.NewFromInt(8000), nil
		},
	}, "ARS")

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/holders/ana/capital", nil), "ref", "ana")
	rec := httptest.NewRecorder()

	handler.Capital(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.CapitalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Currency != "ARS" || !resp.Capital.Equal(decimal.NewFromInt(8000)) {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestHolderHandler_Delete_WithCapital(t *testing.T) {
	handler := NewHolderHandler(&holderServiceStub{
		deleteFn: func(ctx context.Context, ref string) error {
			return domain.ErrHolderHasCapital
		},
	}, "ARS")

	req := setChiURLParam(httptest.NewRequest(http.MethodDelete, "/holders/ana", nil), "ref", "ana")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHolderHandler_Get_NotFound(t *testing.T) {
	handler := NewHolderHandler(&holderServiceStub{
		getFn: func(ctx context.Context, ref string) (*domain.Holder, error) {
			return nil, domain.ErrHolderNotFound
		},
	}, "ARS")

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/holders/nadie", nil), "ref", "nadie")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
