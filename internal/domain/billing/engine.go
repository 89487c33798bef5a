package billing

import (
	"errors"
	"fmt"

	"fieldserve/internal/domain/entities"
)

var ErrUnknownPricingModel = errors.New("unknown pricing model")

// Totals is the invoice-level sum over computed lines.
type Totals struct {
	Subtotal    float64
	TaxAmount   float64
	TotalAmount float64
}

// ComputeInvoiceLines derives invoice-side line items from the job's
// pricing model.
//
// Time & materials produces one line per job line item; every other model
// produces a single synthetic line representing the whole job. Tax is
// applied per line at the job's tax rate.
func ComputeInvoiceLines(job entities.Job) ([]entities.InvoiceLineItem, error) {
	switch job.PricingModel {
	case entities.PricingTimeAndMaterials:
		lines := make([]entities.InvoiceLineItem, 0, len(job.LineItems))
		for i, item := range job.LineItems {
			lines = append(lines, makeLine(item.Description, item.Quantity, item.UnitRate, job.TaxRate, i))
		}
		return lines, nil

	case entities.PricingFlatRate:
		return []entities.InvoiceLineItem{
			makeLine("Flat rate service", 1, job.FlatRateAmount, job.TaxRate, 0),
		}, nil

	case entities.PricingUnitPrice:
		desc := fmt.Sprintf("%g units @ %.2f", job.UnitCount, job.UnitPrice)
		return []entities.InvoiceLineItem{
			makeLine(desc, 1, Round2(job.UnitCount*job.UnitPrice), job.TaxRate, 0),
		}, nil

	case entities.PricingPercentage:
		desc := fmt.Sprintf("%g%% of %.2f", job.Percentage, job.PercentageBaseAmount)
		preTax := Round2(job.PercentageBaseAmount * job.Percentage / 100)
		return []entities.InvoiceLineItem{
			makeLine(desc, 1, preTax, job.TaxRate, 0),
		}, nil

	case entities.PricingRecurring:
		// Recurrence scheduling is out of scope; invoice the designated rate.
		desc := "Recurring service"
		if job.RecurringInterval != "" {
			desc = fmt.Sprintf("Recurring service (per %s)", job.RecurringInterval)
		}
		return []entities.InvoiceLineItem{
			makeLine(desc, 1, job.RecurringRate, job.TaxRate, 0),
		}, nil

	case entities.PricingMilestone:
		return []entities.InvoiceLineItem{
			makeLine("Milestone base", 1, job.MilestoneBaseAmount, job.TaxRate, 0),
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownPricingModel, job.PricingModel)
}

// makeLine rounds at each multiplication boundary: once for the pre-tax
// amount, once for the tax on that rounded amount.
func makeLine(description string, quantity, unitPrice, taxRate float64, sortOrder int) entities.InvoiceLineItem {
	preTax := Round2(quantity * unitPrice)
	taxAmount := Round2(preTax * taxRate / 100)
	return entities.InvoiceLineItem{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TaxRate:     taxRate,
		TaxAmount:   taxAmount,
		LineTotal:   preTax + taxAmount,
		SortOrder:   sortOrder,
	}
}

// ComputeTotals sums computed lines into invoice totals.
func ComputeTotals(lines []entities.InvoiceLineItem) Totals {
	var t Totals
	for _, l := range lines {
		t.Subtotal += l.LineTotal - l.TaxAmount
		t.TaxAmount += l.TaxAmount
	}
	t.Subtotal = Round2(t.Subtotal)
	t.TaxAmount = Round2(t.TaxAmount)
	t.TotalAmount = Round2(t.Subtotal + t.TaxAmount)
	return t
}
