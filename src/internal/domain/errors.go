package domain

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrUnsupportedCurrency = errors.New("unsupported currency")
var ErrInvalidCategory = errors.New("invalid expense category")
var ErrInvalidAmount = errors.New("amount must be greater than zero with at most two decimal places")
var ErrInvalidAccount = errors.New("account must be non-blank and at most 64 characters")
var ErrFutureDated = errors.New("transaction datetime must be in the past")
var ErrRateUnavailable = errors.New("exchange rate snapshot unavailable")
