package usecase

import (
	"context"
	"errors"
	"testing"

	"fieldserve/internal/domain/entities"
	mock_interfaces "fieldserve/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

func TestJobUseCase_CreateJob(t *testing.T) {
	t.Run("invalid customer id", func(t *testing.T) {
		uc := NewJobUseCase(nil)
		_, err := uc.CreateJob(context.Background(), NewJobInput{CustomerID: "  "})
		if !errors.Is(err, ErrInvalidCustomerID) {
			t.Fatalf("expected ErrInvalidCustomerID, got %v", err)
		}
	})

	t.Run("pricing field validation per model", func(t *testing.T) {
		cases := []struct {
			name string
			in   NewJobInput
			want error
		}{
			{"unknown model", NewJobInput{CustomerID: "c-1", PricingModel: "barter"}, ErrInvalidPricingModel},
			{"t&m without items", NewJobInput{CustomerID: "c-1", PricingModel: entities.PricingTimeAndMaterials}, ErrInvalidPricingFields},
			{"flat rate without amount", NewJobInput{CustomerID: "c-1", PricingModel: entities.PricingFlatRate}, ErrInvalidPricingFields},
			{"unit price without count", NewJobInput{CustomerID: "c-1", PricingModel: entities.PricingUnitPrice, UnitPrice: 5}, ErrInvalidPricingFields},
			{"percentage without base", NewJobInput{CustomerID: "c-1", PricingModel: entities.PricingPercentage, Percentage: 10}, ErrInvalidPricingFields},
			{"recurring without rate", NewJobInput{CustomerID: "c-1", PricingModel: entities.PricingRecurring}, ErrInvalidPricingFields},
			{"milestone without base", NewJobInput{CustomerID: "c-1", PricingModel: entities.PricingMilestone}, ErrInvalidPricingFields},
		}
		for _, tc := range cases {
			if _, err := NewJobUseCase(nil).CreateJob(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
			}
		}
	})

	t.Run("create success starts in draft", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIJobRepository(ctrl)
		uc := NewJobUseCase(repo)

		repo.EXPECT().Create(gomock.Any(), gomock.AssignableToTypeOf(entities.Job{})).DoAndReturn(
			func(_ context.Context, j entities.Job) (entities.Job, error) {
				if j.ID == "" || j.Status != entities.JobStatusDraft {
					t.Fatalf("unexpected job: %+v", j)
				}
				if j.CreatedAt.IsZero() || j.UpdatedAt.IsZero() {
					t.Fatalf("expected timestamps")
				}
				return j, nil
			},
		)

		j, err := uc.CreateJob(context.Background(), NewJobInput{
			CustomerID:     " c-1 ",
			Title:          "Replace AC unit",
			PricingModel:   entities.PricingFlatRate,
			FlatRateAmount: 500,
			TaxRate:        10,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if j.CustomerID != "c-1" {
			t.Fatalf("expected trimmed customer id, got %q", j.CustomerID)
		}
	})
}

func TestJobUseCase_GetByID(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIJobRepository(ctrl)
		uc := NewJobUseCase(repo)

		repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(entities.Job{}, nil)

		_, err := uc.GetByID(context.Background(), "job-1")
		if !errors.Is(err, ErrJobNotFound) {
			t.Fatalf("expected ErrJobNotFound, got %v", err)
		}
	})
}
