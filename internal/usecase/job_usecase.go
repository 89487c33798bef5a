package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"fieldserve/internal/domain/entities"
	"fieldserve/internal/usecase/interfaces"

	"github.com/google/uuid"
)

var (
	ErrInvalidCustomerID    = errors.New("invalid customer_id")
	ErrInvalidPricingModel  = errors.New("invalid pricing model")
	ErrInvalidPricingFields = errors.New("pricing model fields incomplete")
)

// NewJobInput carries everything a draft job needs at creation time.
type NewJobInput struct {
	CustomerID           string
	Title                string
	PricingModel         entities.PricingModel
	TaxRate              float64
	FlatRateAmount       float64
	UnitCount            float64
	UnitPrice            float64
	Percentage           float64
	PercentageBaseAmount float64
	RecurringInterval    string
	RecurringRate        float64
	MilestoneBaseAmount  float64
	LineItems            []entities.JobLineItem
}

// IJobUseCase exposes job CRUD. Status changes are not here: they go
// through IJobLifecycleUseCase exclusively.

type IJobUseCase interface {
	CreateJob(ctx context.Context, in NewJobInput) (entities.Job, error)
	GetByID(ctx context.Context, id string) (entities.Job, error)
}

type JobUseCase struct {
	repo interfaces.IJobRepository
}

var _ IJobUseCase = (*JobUseCase)(nil)

func NewJobUseCase(repo interfaces.IJobRepository) *JobUseCase {
	return &JobUseCase{repo: repo}
}

func (u *JobUseCase) CreateJob(ctx context.Context, in NewJobInput) (entities.Job, error) {
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	if in.CustomerID == "" {
		return entities.Job{}, ErrInvalidCustomerID
	}
	if err := validatePricing(in); err != nil {
		return entities.Job{}, err
	}

	now := time.Now().UTC()
	j := entities.Job{
		ID:                   uuid.NewString(),
		CustomerID:           in.CustomerID,
		Title:                strings.TrimSpace(in.Title),
		Status:               entities.JobStatusDraft,
		PricingModel:         in.PricingModel,
		TaxRate:              in.TaxRate,
		FlatRateAmount:       in.FlatRateAmount,
		UnitCount:            in.UnitCount,
		UnitPrice:            in.UnitPrice,
		Percentage:           in.Percentage,
		PercentageBaseAmount: in.PercentageBaseAmount,
		RecurringInterval:    in.RecurringInterval,
		RecurringRate:        in.RecurringRate,
		MilestoneBaseAmount:  in.MilestoneBaseAmount,
		LineItems:            in.LineItems,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	return u.repo.Create(ctx, j)
}

func (u *JobUseCase) GetByID(ctx context.Context, id string) (entities.Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Job{}, ErrInvalidJobID
	}

	j, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Job{}, err
	}
	if j.ID == "" {
		return entities.Job{}, ErrJobNotFound
	}
	return j, nil
}

func validatePricing(in NewJobInput) error {
	switch in.PricingModel {
	case entities.PricingTimeAndMaterials:
		if len(in.LineItems) == 0 {
			return ErrInvalidPricingFields
		}
	case entities.PricingFlatRate:
		if in.FlatRateAmount <= 0 {
			return ErrInvalidPricingFields
		}
	case entities.PricingUnitPrice:
		if in.UnitCount <= 0 || in.UnitPrice <= 0 {
			return ErrInvalidPricingFields
		}
	case entities.PricingPercentage:
		if in.Percentage <= 0 || in.PercentageBaseAmount <= 0 {
			return ErrInvalidPricingFields
		}
	case entities.PricingRecurring:
		if in.RecurringRate <= 0 {
			return ErrInvalidPricingFields
		}
	case entities.PricingMilestone:
		if in.MilestoneBaseAmount <= 0 {
			return ErrInvalidPricingFields
		}
	default:
		return ErrInvalidPricingModel
	}
	return nil
}
