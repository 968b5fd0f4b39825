package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"liquidityRisk/internal/model"
)

func TestJsonlStorageAppendsAndReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "calcs.jsonl")
	store := NewJsonlStorage(path)
	ctx := context.Background()

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := model.ILCalculation{PositionID: "pos-1", ImpermanentLossPercentage: 5.7191, RiskLevel: model.RiskHigh, CalculatedAt: at}
	second := model.ILCalculation{PositionID: "pos-1", ImpermanentLossPercentage: 0, RiskLevel: model.RiskLow, CalculatedAt: at.Add(time.Hour)}

	require.NoError(t, store.PutCalculations(ctx, []model.ILCalculation{first}))
	require.NoError(t, store.PutCalculations(ctx, nil))
	require.NoError(t, store.PutCalculations(ctx, []model.ILCalculation{second}))

	calcs, err := ReadCalculations(path)
	require.NoError(t, err)
	require.Len(t, calcs, 2)
	require.Equal(t, model.RiskHigh, calcs[0].RiskLevel)
	require.Equal(t, 5.7191, calcs[0].ImpermanentLossPercentage)
	require.True(t, calcs[1].CalculatedAt.Equal(second.CalculatedAt))
}

func TestReadCalculationsMissingFile(t *testing.T) {
	calcs, err := ReadCalculations(filepath.Join(t.TempDir(), "missing.jsonl"))
	require.NoError(t, err)
	require.Empty(t, calcs)
}
