package billing

import (
	"errors"
	"fmt"
	"math"

	"fieldserve/internal/domain/entities"
)

var (
	ErrUnknownPartialBasis = errors.New("unknown partial invoice basis")

	// ErrComputationInvariant signals an internal calculation produced an
	// impossible figure (negative amount, balance growing). It must never
	// reach persistence.
	ErrComputationInvariant = errors.New("invoice computation invariant violated")
)

// PartialBasis is how the caller sizes the next progress invoice: a
// percentage of the remaining balance, or a fixed amount.
type PartialBasis struct {
	Kind    entities.ProgressBasis
	Percent float64
	Amount  float64
}

// PartialResult is the outcome of one partial-invoice computation.
type PartialResult struct {
	RawAmount      float64
	AppliedDeposit float64
	InvoiceAmount  float64
	RemainingAfter float64
}

// ComputePartial sizes the next partial invoice with the deposit offset
// applied and the amount clamped to the remaining balance.
//
// The deposit is applied at most once, only to the first partial invoice
// issued while nothing has been invoiced yet. Once the job has any invoice
// the deposit is considered consumed, whether or not it was drawn down.
func ComputePartial(totalAmount, alreadyInvoiced, depositAmount float64, basis PartialBasis) (PartialResult, error) {
	remainingBefore := math.Max(0, Round2(totalAmount-alreadyInvoiced))

	var rawAmount float64
	switch basis.Kind {
	case entities.ProgressBasisPercent:
		rawAmount = Round2(clamp(basis.Percent, 0, 100) / 100 * remainingBefore)
	case entities.ProgressBasisFixed:
		rawAmount = Round2(clamp(basis.Amount, 0, remainingBefore))
	default:
		return PartialResult{}, fmt.Errorf("%w: %q", ErrUnknownPartialBasis, basis.Kind)
	}

	isFirstPartial := alreadyInvoiced <= 0 && depositAmount > 0
	appliedDeposit := 0.0
	if isFirstPartial {
		appliedDeposit = math.Min(depositAmount, rawAmount)
	}

	res := PartialResult{
		RawAmount:      rawAmount,
		AppliedDeposit: Round2(appliedDeposit),
		InvoiceAmount:  Round2(math.Max(0, rawAmount-appliedDeposit)),
		RemainingAfter: Round2(math.Max(0, remainingBefore-rawAmount)),
	}

	if res.InvoiceAmount < 0 || res.RemainingAfter < 0 || res.RemainingAfter > remainingBefore {
		return PartialResult{}, fmt.Errorf("%w: raw=%.2f deposit=%.2f amount=%.2f remaining=%.2f",
			ErrComputationInvariant, res.RawAmount, res.AppliedDeposit, res.InvoiceAmount, res.RemainingAfter)
	}
	return res, nil
}
