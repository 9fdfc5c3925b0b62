// Package model defines the flat row types shared by the router and the
// writers.
//
// Conventions:
//   - Timestamps: int64 microseconds since Unix epoch
//   - Prices: float64, widened from the single-precision wire values
//   - Unset quote fields are nil pointers, never zero values
//   - Enumerations: upper-case names (e.g. "EQUITY", "REGULAR")
package model
