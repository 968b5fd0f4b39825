package storage

import (
	"context"

	"liquidityRisk/internal/model"
)

// Storage defines a sink for IL calculations.
type Storage interface {
	PutCalculations(ctx context.Context, calcs []model.ILCalculation) error
}
