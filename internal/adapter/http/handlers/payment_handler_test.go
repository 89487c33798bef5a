package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldserve/internal/adapter/http/handlers/mocks"
	"fieldserve/internal/domain/entities"
	"fieldserve/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func newPaymentRouter(uc usecase.IPaymentUseCase) *gin.Engine {
	h := NewPaymentHandler(uc)
	r := gin.New()
	r.POST("/v1/payments/:invoice_id", h.CollectPaymentByInvoiceID)
	r.GET("/v1/payments/:invoice_id", h.GetPaymentByInvoiceID)
	return r
}

func TestPaymentHandler_CollectPaymentByInvoiceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("PAYMENT_GATEWAY_MOCK", "")
	t.Setenv("MERCADOPAGO_MOCK", "")

	t.Run("envelope payload is unwrapped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)

		uc.EXPECT().CollectPayment(gomock.Any(), "inv-1", gomock.Any()).DoAndReturn(
			func(_ any, _ string, payload json.RawMessage) (entities.Payment, error) {
				var body map[string]any
				if err := json.Unmarshal(payload, &body); err != nil {
					t.Fatalf("payload not json: %v", err)
				}
				if body["payment_method_id"] != "pix" {
					t.Fatalf("expected unwrapped provider payload, got %s", string(payload))
				}
				return entities.Payment{ID: "pay-1", InvoiceID: "inv-1", Status: entities.PaymentStatusApproved}, nil
			},
		)

		r := newPaymentRouter(uc)
		w := postJSON(r, "/v1/payments/inv-1", map[string]any{
			"provider_payload": map[string]any{"payment_method_id": "pix"},
		})

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response: %v", err)
		}
		if resp["payment_id"] != "pay-1" || resp["status"] != "approved" {
			t.Fatalf("unexpected response: %v", resp)
		}
	})

	t.Run("empty body becomes an empty payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)

		uc.EXPECT().CollectPayment(gomock.Any(), "inv-1", json.RawMessage("{}")).
			Return(entities.Payment{ID: "pay-1", InvoiceID: "inv-1", Status: entities.PaymentStatusApproved}, nil)

		r := newPaymentRouter(uc)
		req := httptest.NewRequest(http.MethodPost, "/v1/payments/inv-1", bytes.NewBufferString(""))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)

		r := newPaymentRouter(uc)
		req := httptest.NewRequest(http.MethodPost, "/v1/payments/inv-1", bytes.NewBufferString("{broken"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invoice not payable maps to 409", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)

		uc.EXPECT().CollectPayment(gomock.Any(), "inv-1", gomock.Any()).
			Return(entities.Payment{}, usecase.ErrInvoiceNotPayable)

		r := newPaymentRouter(uc)
		w := postJSON(r, "/v1/payments/inv-1", map[string]any{"payment_method_id": "pix"})

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response: %v", err)
		}
		if resp["code"] != "INVOICE_NOT_PAYABLE" {
			t.Fatalf("unexpected code: %v", resp)
		}
	})

	t.Run("provider unauthorized maps to 401", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)

		uc.EXPECT().CollectPayment(gomock.Any(), "inv-1", gomock.Any()).
			Return(entities.Payment{}, usecase.ErrPaymentGatewayUnauthorized)

		r := newPaymentRouter(uc)
		w := postJSON(r, "/v1/payments/inv-1", map[string]any{"payment_method_id": "pix"})

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestPaymentHandler_GetPaymentByInvoiceID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("no payments maps to 404", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)

		uc.EXPECT().ListByInvoiceID(gomock.Any(), "inv-1").Return([]entities.Payment{}, nil)

		r := newPaymentRouter(uc)
		req := httptest.NewRequest(http.MethodGet, "/v1/payments/inv-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("latest payment wins", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)

		older := entities.Payment{ID: "pay-1", InvoiceID: "inv-1", Status: entities.PaymentStatusDenied,
			Date: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
		newer := entities.Payment{ID: "pay-2", InvoiceID: "inv-1", Status: entities.PaymentStatusApproved,
			Date: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)}
		uc.EXPECT().ListByInvoiceID(gomock.Any(), "inv-1").Return([]entities.Payment{older, newer}, nil)

		r := newPaymentRouter(uc)
		req := httptest.NewRequest(http.MethodGet, "/v1/payments/inv-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response: %v", err)
		}
		if resp["payment_id"] != "pay-2" {
			t.Fatalf("expected latest payment, got %v", resp)
		}
	})
}
