package models

import "errors"

// ErrInsufficientData means fewer candles were available than the snapshot
// minimum. Per-indicator shortfalls are nil fields instead, never errors.
var ErrInsufficientData = errors.New("insufficient historical data")
