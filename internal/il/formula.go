package il

import "math"

// ILFromPriceRatio returns the impermanent loss percentage of a 50/50
// constant-product position after the price ratio moved from 1 to ratio.
func ILFromPriceRatio(ratio float64) (float64, error) {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 {
		return 0, inputError(ErrInvalidPriceRatio, "ratio", ratio)
	}
	loss := (1 - (2*math.Sqrt(ratio))/(1+ratio)) * 100
	if loss < 0 {
		// rounding at ratio == 1
		return 0, nil
	}
	return loss, nil
}

func validatePrice(field string, price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return inputError(ErrInvalidPriceRatio, field, price)
	}
	return nil
}
