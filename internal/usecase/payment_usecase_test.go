package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fieldserve/internal/domain/entities"
	"fieldserve/internal/domain/lifecycle"
	mock_interfaces "fieldserve/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

type lifecycleRecorder struct {
	calls []entities.JobStatus
	err   error
}

func (r *lifecycleRecorder) RequestTransition(_ context.Context, _ string, requested entities.JobStatus) (TransitionOutcome, error) {
	r.calls = append(r.calls, requested)
	return TransitionOutcome{}, r.err
}

func (r *lifecycleRecorder) CommitTransition(context.Context, string, entities.JobStatus, lifecycle.CaptureKind, lifecycle.Data) (TransitionOutcome, error) {
	return TransitionOutcome{}, nil
}

func newPaymentUseCase(repo *mock_interfaces.MockIPaymentRepository, invoiceRepo *mock_interfaces.MockIInvoiceRepository, gateway *mock_interfaces.MockIPaymentGateway, lc IJobLifecycleUseCase) *PaymentUseCase {
	uc := NewPaymentUseCase(repo, invoiceRepo, gateway, lc)
	uc.mockMode = func() bool { return false }
	uc.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	return uc
}

func TestPaymentUseCase_CollectPayment(t *testing.T) {
	payload := json.RawMessage(`{"payment_method_id":"pix"}`)

	t.Run("invalid invoice id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		uc := newPaymentUseCase(nil, nil, gateway, nil)

		_, err := uc.CollectPayment(context.Background(), "  ", payload)
		if !errors.Is(err, ErrInvalidPaymentInvoiceID) {
			t.Fatalf("expected ErrInvalidPaymentInvoiceID, got %v", err)
		}
	})

	t.Run("invoice not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		invoiceRepo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		uc := newPaymentUseCase(nil, invoiceRepo, gateway, nil)

		invoiceRepo.EXPECT().GetByID(gomock.Any(), "inv-1").Return(entities.Invoice{}, nil)

		_, err := uc.CollectPayment(context.Background(), "inv-1", payload)
		if !errors.Is(err, ErrInvoiceNotFound) {
			t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
		}
	})

	t.Run("paid invoice is not payable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		invoiceRepo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		uc := newPaymentUseCase(nil, invoiceRepo, gateway, nil)

		invoiceRepo.EXPECT().GetByID(gomock.Any(), "inv-1").Return(entities.Invoice{ID: "inv-1", Status: entities.InvoiceStatusPaid}, nil)

		_, err := uc.CollectPayment(context.Background(), "inv-1", payload)
		if !errors.Is(err, ErrInvoiceNotPayable) {
			t.Fatalf("expected ErrInvoiceNotPayable, got %v", err)
		}
	})

	t.Run("charges amount due net of the deposit and settles the job", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		invoiceRepo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		lc := &lifecycleRecorder{}
		uc := newPaymentUseCase(repo, invoiceRepo, gateway, lc)

		inv := entities.Invoice{
			ID:              "inv-1",
			Number:          "INV-2026-01",
			JobID:           "job-1",
			Kind:            entities.InvoiceKindProgress,
			Status:          entities.InvoiceStatusUnpaid,
			TotalAmount:     500,
			DepositApplied:  200,
			ComputedBalance: 0,
		}
		invoiceRepo.EXPECT().GetByID(gomock.Any(), "inv-1").Return(inv, nil)
		gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p json.RawMessage) (string, string, json.RawMessage, error) {
				var m map[string]any
				if err := json.Unmarshal(p, &m); err != nil {
					t.Fatalf("payload not json: %v", err)
				}
				if m["transaction_amount"] != float64(300) {
					t.Fatalf("expected transaction_amount 300, got %v", m["transaction_amount"])
				}
				if m["external_reference"] != "inv-1" {
					t.Fatalf("expected external_reference inv-1, got %v", m["external_reference"])
				}
				return "mp-1", "approved", json.RawMessage(`{"id":"mp-1","status":"approved"}`), nil
			},
		)
		repo.EXPECT().Create(gomock.Any(), gomock.AssignableToTypeOf(entities.Payment{})).DoAndReturn(
			func(_ context.Context, p entities.Payment) (entities.Payment, error) {
				if p.ID != "mp-1" || p.InvoiceID != "inv-1" || p.Status != entities.PaymentStatusApproved {
					t.Fatalf("unexpected payment: %+v", p)
				}
				return p, nil
			},
		)
		invoiceRepo.EXPECT().UpdateStatus(gomock.Any(), "inv-1", entities.InvoiceStatusPaid, gomock.Any()).
			Return(entities.Invoice{ID: "inv-1", Status: entities.InvoiceStatusPaid}, nil)

		created, err := uc.CollectPayment(context.Background(), "inv-1", payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.ID != "mp-1" {
			t.Fatalf("unexpected payment: %+v", created)
		}
		if len(lc.calls) != 1 || lc.calls[0] != entities.JobStatusPaid {
			t.Fatalf("expected invoiced->paid transition request, got %v", lc.calls)
		}
	})

	t.Run("progress invoice with balance left does not settle the job", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		invoiceRepo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		lc := &lifecycleRecorder{}
		uc := newPaymentUseCase(repo, invoiceRepo, gateway, lc)

		inv := entities.Invoice{
			ID:              "inv-1",
			JobID:           "job-1",
			Kind:            entities.InvoiceKindProgress,
			Status:          entities.InvoiceStatusUnpaid,
			TotalAmount:     300,
			ComputedBalance: 700,
		}
		invoiceRepo.EXPECT().GetByID(gomock.Any(), "inv-1").Return(inv, nil)
		gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
			Return("mp-2", "approved", json.RawMessage(`{"id":"mp-2"}`), nil)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p entities.Payment) (entities.Payment, error) { return p, nil },
		)
		invoiceRepo.EXPECT().UpdateStatus(gomock.Any(), "inv-1", entities.InvoiceStatusPaid, gomock.Any()).
			Return(entities.Invoice{ID: "inv-1", Status: entities.InvoiceStatusPaid}, nil)

		if _, err := uc.CollectPayment(context.Background(), "inv-1", payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lc.calls) != 0 {
			t.Fatalf("expected no settle attempt, got %v", lc.calls)
		}
	})

	t.Run("settle rejection is swallowed, payment still succeeds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		invoiceRepo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		lc := &lifecycleRecorder{err: errors.New("job not in invoiced")}
		uc := newPaymentUseCase(repo, invoiceRepo, gateway, lc)

		inv := entities.Invoice{
			ID:          "inv-1",
			JobID:       "job-1",
			Kind:        entities.InvoiceKindFull,
			Status:      entities.InvoiceStatusUnpaid,
			TotalAmount: 550,
		}
		invoiceRepo.EXPECT().GetByID(gomock.Any(), "inv-1").Return(inv, nil)
		gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
			Return("mp-3", "approved", json.RawMessage(`{"id":"mp-3"}`), nil)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p entities.Payment) (entities.Payment, error) { return p, nil },
		)
		invoiceRepo.EXPECT().UpdateStatus(gomock.Any(), "inv-1", entities.InvoiceStatusPaid, gomock.Any()).
			Return(entities.Invoice{ID: "inv-1", Status: entities.InvoiceStatusPaid}, nil)

		if _, err := uc.CollectPayment(context.Background(), "inv-1", payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("gateway unauthorized is classified", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		invoiceRepo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		uc := newPaymentUseCase(nil, invoiceRepo, gateway, nil)

		invoiceRepo.EXPECT().GetByID(gomock.Any(), "inv-1").
			Return(entities.Invoice{ID: "inv-1", Status: entities.InvoiceStatusUnpaid, TotalAmount: 100}, nil)
		gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
			Return("", "", nil, errors.New(`{"error":"unauthorized","status":401}`))

		_, err := uc.CollectPayment(context.Background(), "inv-1", payload)
		if !errors.Is(err, ErrPaymentGatewayUnauthorized) {
			t.Fatalf("expected ErrPaymentGatewayUnauthorized, got %v", err)
		}
	})

	t.Run("missing payment_method_id rejected outside mock mode", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		invoiceRepo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		uc := newPaymentUseCase(nil, invoiceRepo, gateway, nil)

		invoiceRepo.EXPECT().GetByID(gomock.Any(), "inv-1").
			Return(entities.Invoice{ID: "inv-1", Status: entities.InvoiceStatusUnpaid, TotalAmount: 100}, nil)

		_, err := uc.CollectPayment(context.Background(), "inv-1", json.RawMessage(`{}`))
		if !errors.Is(err, ErrInvalidProviderPayload) {
			t.Fatalf("expected ErrInvalidProviderPayload, got %v", err)
		}
	})
}

func TestPaymentUseCase_GetByID(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		uc := newPaymentUseCase(repo, nil, mock_interfaces.NewMockIPaymentGateway(ctrl), nil)

		repo.EXPECT().GetByID(gomock.Any(), "p-1").Return(entities.Payment{}, nil)

		_, err := uc.GetByID(context.Background(), "p-1")
		if !errors.Is(err, ErrPaymentNotFound) {
			t.Fatalf("expected ErrPaymentNotFound, got %v", err)
		}
	})
}
