package utils

import (
	"fmt"
	"math"
)

// Round2 rounds an amount to euro cents. All prices are stored with two
// decimals.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatEUR renders an amount for documents and logs.
func FormatEUR(amount float64) string {
	return fmt.Sprintf("%.2f €", amount)
}
