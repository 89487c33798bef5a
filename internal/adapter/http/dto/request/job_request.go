package request

import (
	"fieldserve/internal/domain/entities"
	"fieldserve/internal/usecase"
)

type JobLineItemRequest struct {
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required"`
	UnitRate    float64 `json:"unit_rate" binding:"required"`
	ItemType    string  `json:"item_type"`
}

// JobCreateRequest is the payload for creating a draft job. Only the
// fields of the chosen pricing model need to be present; the use case
// validates model completeness.
type JobCreateRequest struct {
	CustomerID           string               `json:"customer_id" binding:"required"`
	Title                string               `json:"title"`
	PricingModel         string               `json:"pricing_model" binding:"required"`
	TaxRate              float64              `json:"tax_rate"`
	FlatRateAmount       float64              `json:"flat_rate_amount"`
	UnitCount            float64              `json:"unit_count"`
	UnitPrice            float64              `json:"unit_price"`
	Percentage           float64              `json:"percentage"`
	PercentageBaseAmount float64              `json:"percentage_base_amount"`
	RecurringInterval    string               `json:"recurring_interval"`
	RecurringRate        float64              `json:"recurring_rate"`
	MilestoneBaseAmount  float64              `json:"milestone_base_amount"`
	LineItems            []JobLineItemRequest `json:"line_items"`
}

func (r JobCreateRequest) ToInput() usecase.NewJobInput {
	items := make([]entities.JobLineItem, 0, len(r.LineItems))
	for _, li := range r.LineItems {
		itemType := entities.LineItemType(li.ItemType)
		if itemType == "" {
			itemType = entities.LineItemLabor
		}
		items = append(items, entities.JobLineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitRate:    li.UnitRate,
			ItemType:    itemType,
		})
	}
	return usecase.NewJobInput{
		CustomerID:           r.CustomerID,
		Title:                r.Title,
		PricingModel:         entities.PricingModel(r.PricingModel),
		TaxRate:              r.TaxRate,
		FlatRateAmount:       r.FlatRateAmount,
		UnitCount:            r.UnitCount,
		UnitPrice:            r.UnitPrice,
		Percentage:           r.Percentage,
		PercentageBaseAmount: r.PercentageBaseAmount,
		RecurringInterval:    r.RecurringInterval,
		RecurringRate:        r.RecurringRate,
		MilestoneBaseAmount:  r.MilestoneBaseAmount,
		LineItems:            items,
	}
}
