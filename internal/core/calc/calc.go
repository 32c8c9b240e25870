// Package calc provides checked unsigned arithmetic for pool accounting.
// All operations fail loudly instead of wrapping or truncating.
package calc

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	// ErrArithmeticOverflow is returned when a result exceeds uint64.
	ErrArithmeticOverflow = errors.New("calc: arithmetic overflow")

	// ErrDivideByZero is returned on division by a zero denominator.
	ErrDivideByZero = errors.New("calc: divide by zero")

	// ErrUnderflow is returned when a subtraction would go below zero.
	ErrUnderflow = errors.New("calc: underflow")
)

// Proportional computes floor(amount * numerator / denominator) with a
// 128-bit intermediate, so the product never truncates before the division.
func Proportional(amount, numerator, denominator uint64) (uint64, error) {
	if denominator == 0 {
		return 0, fmt.Errorf("%d * %d / %d: %w", amount, numerator, denominator, ErrDivideByZero)
	}
	hi, lo := bits.Mul64(amount, numerator)
	// bits.Div64 panics when the quotient does not fit in 64 bits.
	if hi >= denominator {
		return 0, fmt.Errorf("%d * %d / %d: %w", amount, numerator, denominator, ErrArithmeticOverflow)
	}
	quo, _ := bits.Div64(hi, lo, denominator)
	return quo, nil
}

// CheckedAdd returns a + b, failing on overflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%d + %d: %w", a, b, ErrArithmeticOverflow)
	}
	return sum, nil
}

// CheckedSub returns a - b, failing when b exceeds a.
func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, fmt.Errorf("%d - %d: %w", a, b, ErrUnderflow)
	}
	return diff, nil
}
