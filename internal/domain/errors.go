package domain

import "errors"

// Error taxonomy shared by the engine packages. Callers match with errors.Is;
// wrapping sites attach the offending symbol, date, or parameter.
var (
	// ErrInsufficientData is returned when there is not enough aligned
	// price history to simulate.
	ErrInsufficientData = errors.New("insufficient price data")

	// ErrInvalidConfig is returned when strategy parameters are out of
	// documented bounds or holdings do not sum to 1.0.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidPrice is returned when every symbol has a non-positive or
	// non-finite price on a date.
	ErrInvalidPrice = errors.New("invalid price data")
)
