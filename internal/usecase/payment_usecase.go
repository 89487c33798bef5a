package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"fieldserve/internal/domain/entities"
	"fieldserve/internal/usecase/interfaces"
)

var (
	ErrPaymentNotFound                = errors.New("payment not found")
	ErrInvalidPaymentInvoiceID        = errors.New("invalid invoice_id")
	ErrInvalidProviderPayload         = errors.New("invalid payment provider payload")
	ErrInvoiceNotPayable              = errors.New("invoice is not payable")
	ErrPaymentGatewayBadRequest       = errors.New("payment gateway bad request")
	ErrPaymentGatewayUnauthorized     = errors.New("payment gateway unauthorized")
	ErrPaymentGatewayInvalidUsers     = errors.New("payment gateway invalid users involved")
	ErrPaymentGatewayCustomerNotFound = errors.New("payment gateway customer not found")
)

// IPaymentUseCase encapsulates collecting payment on an invoice: charge
// through the provider, persist the approved payment, mark the invoice
// paid, and drive the job's invoiced -> paid transition through the guard
// once the balance is settled.

type IPaymentUseCase interface {
	CollectPayment(ctx context.Context, invoiceID string, providerPayload json.RawMessage) (entities.Payment, error)
	GetByID(ctx context.Context, id string) (entities.Payment, error)
	ListByInvoiceID(ctx context.Context, invoiceID string) ([]entities.Payment, error)
}

type PaymentUseCase struct {
	repo        interfaces.IPaymentRepository
	invoiceRepo interfaces.IInvoiceRepository
	gateway     interfaces.IPaymentGateway
	lifecycle   IJobLifecycleUseCase
	mockMode    func() bool
	now         func() time.Time
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(repo interfaces.IPaymentRepository, invoiceRepo interfaces.IInvoiceRepository, gateway interfaces.IPaymentGateway, lifecycle IJobLifecycleUseCase) *PaymentUseCase {
	return &PaymentUseCase{
		repo:        repo,
		invoiceRepo: invoiceRepo,
		gateway:     gateway,
		lifecycle:   lifecycle,
		mockMode:    isPaymentGatewayMockEnabled,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (u *PaymentUseCase) CollectPayment(ctx context.Context, invoiceID string, providerPayload json.RawMessage) (entities.Payment, error) {
	log.Printf("[payment][usecase] collect start raw_invoice_id=%q payload_len=%d", invoiceID, len(providerPayload))
	mockMode := u.mockMode()
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return entities.Payment{}, ErrInvalidPaymentInvoiceID
	}
	if len(providerPayload) == 0 || !json.Valid(providerPayload) {
		if !mockMode {
			log.Printf("[payment][usecase] invalid payload invoice_id=%s", invoiceID)
			return entities.Payment{}, ErrInvalidProviderPayload
		}
		providerPayload = json.RawMessage("{}")
	}
	if u.gateway == nil {
		return entities.Payment{}, errors.New("payment gateway not configured")
	}

	inv, err := u.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		log.Printf("[payment][usecase] failed loading invoice invoice_id=%s err=%v", invoiceID, err)
		return entities.Payment{}, err
	}
	if inv.ID == "" {
		return entities.Payment{}, ErrInvoiceNotFound
	}
	if inv.Status != entities.InvoiceStatusUnpaid {
		log.Printf("[payment][usecase] invoice not payable invoice_id=%s status=%s", invoiceID, inv.Status)
		return entities.Payment{}, ErrInvoiceNotPayable
	}
	amountDue := inv.TotalAmount - inv.DepositApplied
	log.Printf("[payment][usecase] invoice loaded invoice_id=%s job_id=%s amount_due=%.2f", inv.ID, inv.JobID, amountDue)

	// The source of truth for the amount is the invoice in DB; the payload
	// is enriched so provider events reconcile back to the invoice.
	var reqMap map[string]any
	if err := json.Unmarshal(providerPayload, &reqMap); err == nil {
		if !mockMode && !hasNonEmptyString(reqMap, "payment_method_id") {
			log.Printf("[payment][usecase] missing payment_method_id invoice_id=%s", invoiceID)
			return entities.Payment{}, ErrInvalidProviderPayload
		}
		if _, ok := reqMap["external_reference"]; !ok {
			reqMap["external_reference"] = invoiceID
		}
		if _, ok := reqMap["description"]; !ok {
			reqMap["description"] = fmt.Sprintf("Invoice %s", inv.Number)
		}
		reqMap["transaction_amount"] = amountDue
		if b, err := json.Marshal(reqMap); err == nil {
			providerPayload = b
		}
	}

	providerPaymentID := ""
	providerStatus := ""
	providerResp := json.RawMessage(nil)

	if mockMode {
		log.Printf("[payment][usecase] mock mode enabled; skipping external payment gateway invoice_id=%s", invoiceID)
		providerPaymentID = strconv.FormatInt(u.now().UnixNano(), 10)
		providerStatus = "approved"
		mockResp := map[string]any{}
		if len(providerPayload) > 0 && json.Valid(providerPayload) {
			_ = json.Unmarshal(providerPayload, &mockResp)
		}
		nowStr := u.now().Format(time.RFC3339Nano)
		mockResp["id"] = providerPaymentID
		mockResp["status"] = providerStatus
		mockResp["status_detail"] = "accredited"
		mockResp["date_created"] = nowStr
		mockResp["date_approved"] = nowStr
		if _, ok := mockResp["external_reference"]; !ok {
			mockResp["external_reference"] = invoiceID
		}
		if _, ok := mockResp["transaction_amount"]; !ok {
			mockResp["transaction_amount"] = amountDue
		}
		b, mErr := json.Marshal(mockResp)
		if mErr != nil {
			return entities.Payment{}, mErr
		}
		providerResp = b
	} else {
		log.Printf("[payment][usecase] calling payment gateway invoice_id=%s", invoiceID)
		providerPaymentID, providerStatus, providerResp, err = u.gateway.CreatePayment(ctx, providerPayload)
		if err != nil {
			log.Printf("[payment][usecase] payment gateway failed invoice_id=%s err=%v", invoiceID, err)
			return entities.Payment{}, classifyGatewayError(err)
		}
	}
	log.Printf("[payment][usecase] payment gateway success invoice_id=%s provider_payment_id=%s provider_status=%s", invoiceID, providerPaymentID, providerStatus)

	var parsed map[string]interface{}
	if err := json.Unmarshal(providerResp, &parsed); err != nil {
		log.Printf("[payment][usecase] provider response unmarshal failed invoice_id=%s err=%v", invoiceID, err)
	}

	p := entities.Payment{
		ID:                 providerPaymentID,
		InvoiceID:          invoiceID,
		Date:               u.now(),
		Status:             entities.PaymentStatusApproved,
		ProviderPayloadRaw: providerResp,
		ProviderPayload:    parsed,
	}
	created, err := u.repo.Create(ctx, p)
	if err != nil {
		log.Printf("[payment][usecase] payment repository create failed invoice_id=%s payment_id=%s err=%v", invoiceID, p.ID, err)
		return entities.Payment{}, err
	}

	paidAt := u.now()
	if _, err := u.invoiceRepo.UpdateStatus(ctx, inv.ID, entities.InvoiceStatusPaid, &paidAt); err != nil {
		log.Printf("[payment][usecase] invoice status update failed invoice_id=%s err=%v", inv.ID, err)
		return entities.Payment{}, err
	}

	u.settleJobIfPaidOff(ctx, inv)
	log.Printf("[payment][usecase] collect success invoice_id=%s payment_id=%s", invoiceID, created.ID)
	return created, nil
}

// settleJobIfPaidOff moves the job invoiced -> paid once this payment
// settles the job's balance: always for the full invoice, for a progress
// invoice only when its computed balance reached zero. The transition goes
// through the guard; a job not in invoiced simply rejects it, which is
// logged and swallowed (the payment itself already succeeded).
func (u *PaymentUseCase) settleJobIfPaidOff(ctx context.Context, inv entities.Invoice) {
	if u.lifecycle == nil || inv.JobID == "" {
		return
	}
	settles := inv.Kind == entities.InvoiceKindFull ||
		(inv.Kind == entities.InvoiceKindProgress && inv.ComputedBalance <= 0)
	if !settles {
		return
	}
	if _, err := u.lifecycle.RequestTransition(ctx, inv.JobID, entities.JobStatusPaid); err != nil {
		log.Printf("[payment][usecase] job paid transition skipped job_id=%s err=%v", inv.JobID, err)
	}
}

func (u *PaymentUseCase) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Payment{}, errors.New("invalid payment id")
	}

	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.ID == "" {
		return entities.Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

func (u *PaymentUseCase) ListByInvoiceID(ctx context.Context, invoiceID string) ([]entities.Payment, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return nil, ErrInvalidPaymentInvoiceID
	}
	return u.repo.ListByInvoiceID(ctx, invoiceID)
}

func hasNonEmptyString(m map[string]any, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return strings.TrimSpace(s) != ""
}

func classifyGatewayError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "customer not found") || strings.Contains(msg, "\"code\":2002"):
		return ErrPaymentGatewayCustomerNotFound
	case strings.Contains(msg, "invalid users involved") || strings.Contains(msg, "\"code\":2034"):
		return ErrPaymentGatewayInvalidUsers
	case strings.Contains(msg, "\"error\":\"unauthorized\"") || strings.Contains(msg, "\"status\":401"):
		return ErrPaymentGatewayUnauthorized
	case strings.Contains(msg, "\"error\":\"bad_request\"") || strings.Contains(msg, "\"status\":400"):
		return ErrPaymentGatewayBadRequest
	}
	return err
}
