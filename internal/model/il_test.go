package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestILCalculationJSONRoundTrip(t *testing.T) {
	original := ILCalculation{
		PositionID:  "lp-1",
		PoolAddress: "0x1111111111111111111111111111111111111111",
		Initial: Snapshot{
			Prices:  PricePair{Price0: 100, Price1: 1},
			Ratio:   100,
			Amounts: ValuedAmounts{Amount0: 1, Amount1: 100, Value0USD: 100, Value1USD: 100, TotalValueUSD: 200},
		},
		Current: Snapshot{
			Prices:  PricePair{Price0: 200, Price1: 1},
			Ratio:   200,
			Amounts: ValuedAmounts{Amount0: 1, Amount1: 100, Value0USD: 200, Value1USD: 100, TotalValueUSD: 300},
		},
		PriceRatio:                2,
		ImpermanentLossPercentage: 5.719095841793653,
		ImpermanentLossUSD:        11.438191683587306,
		HoldValueUSD:              300,
		LiquidityValueUSD:         300,
		Duration:                  24 * time.Hour,
		DurationDays:              1,
		AnnualizedIL:              2087.4699822546834,
		RiskLevel:                 RiskHigh,
		Recommendations:           []string{"Consider reducing position size"},
		CalculatedAt:              time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(b), `"risk_level":"HIGH"`) {
		t.Fatalf("risk level not encoded by name: %s", b)
	}

	var decoded ILCalculation
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestRiskLevelText(t *testing.T) {
	for _, level := range []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskVeryHigh} {
		text, err := level.MarshalText()
		if err != nil {
			t.Fatalf("marshal %d: %v", level, err)
		}
		var decoded RiskLevel
		if err := decoded.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %s: %v", text, err)
		}
		if decoded != level {
			t.Fatalf("got %s, want %s", decoded, level)
		}
	}

	if RiskVeryHigh.String() != "VERY_HIGH" {
		t.Fatalf("string = %s", RiskVeryHigh)
	}
	if RiskLow >= RiskMedium || RiskHigh >= RiskVeryHigh {
		t.Fatalf("tiers are not ordered")
	}
	if _, err := RiskLevel(9).MarshalText(); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	var level RiskLevel
	if err := level.UnmarshalText([]byte("EXTREME")); err == nil {
		t.Fatalf("expected error for unknown name")
	}
}
