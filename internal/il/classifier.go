package il

import "liquidityRisk/internal/model"

const (
	mediumThreshold   = 1.0
	highThreshold     = 5.0
	veryHighThreshold = 15.0

	exitThreshold = 20.0
	imbalanceHigh = 3.0
	imbalanceLow  = 1.0 / 3.0
)

const (
	RecommendReduce    = "Consider reducing the position or exiting the pool"
	RecommendHighLoss  = "High impermanent loss: losses exceed 20% versus holding"
	RecommendRebalance = "Pool is highly imbalanced; consider rebalancing the position"
	RecommendMonitor   = "Monitor the position closely"
	RecommendStopLoss  = "Consider setting a stop-loss"
	RecommendHealthy   = "Position is healthy; continue regular monitoring"
)

// ClassifyRisk maps a loss severity percentage onto a risk tier. Each
// threshold is the inclusive lower bound of the next tier.
func ClassifyRisk(severity float64) model.RiskLevel {
	switch {
	case severity >= veryHighThreshold:
		return model.RiskVeryHigh
	case severity >= highThreshold:
		return model.RiskHigh
	case severity >= mediumThreshold:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// GenerateRecommendations returns guidance for a position. The result is never empty.
func GenerateRecommendations(ilPercentage, priceRatio float64, level model.RiskLevel) []string {
	var out []string
	if ilPercentage > exitThreshold {
		out = append(out, RecommendReduce, RecommendHighLoss)
	}
	if priceRatio > imbalanceHigh || priceRatio < imbalanceLow {
		out = append(out, RecommendRebalance)
	}
	if level == model.RiskVeryHigh {
		out = append(out, RecommendMonitor, RecommendStopLoss)
	}
	if len(out) == 0 {
		out = append(out, RecommendHealthy)
	}
	return out
}
