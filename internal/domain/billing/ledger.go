package billing

import "fieldserve/internal/domain/entities"

// Ledger is the read-side aggregate over the invoices already issued
// against a job.
type Ledger struct {
	AlreadyInvoiced float64
	DepositRecorded float64
}

// BuildLedger sums the non-voided invoices for a job. Deposit rows carry a
// zero total, so they only feed DepositRecorded.
func BuildLedger(invoices []entities.Invoice) Ledger {
	var l Ledger
	for _, inv := range invoices {
		if inv.Status == entities.InvoiceStatusVoid {
			continue
		}
		l.AlreadyInvoiced += inv.TotalAmount
		if inv.Kind == entities.InvoiceKindDeposit {
			l.DepositRecorded += inv.DepositApplied
		}
	}
	l.AlreadyInvoiced = Round2(l.AlreadyInvoiced)
	l.DepositRecorded = Round2(l.DepositRecorded)
	return l
}

// FirstInvoiceID returns the id of the earliest non-voided invoice for the
// job, used as the parent link on progress invoices. Empty when none exist.
func FirstInvoiceID(invoices []entities.Invoice) string {
	firstID := ""
	var firstAt int64
	for _, inv := range invoices {
		if inv.Status == entities.InvoiceStatusVoid {
			continue
		}
		at := inv.CreatedAt.UnixNano()
		if firstID == "" || at < firstAt {
			firstID = inv.ID
			firstAt = at
		}
	}
	return firstID
}
