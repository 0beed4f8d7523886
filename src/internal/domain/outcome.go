package domain

type RecordStatus string

const (
	RecordStatusRecorded RecordStatus = "RECORDED"
	RecordStatusRejected RecordStatus = "REJECTED"
)

type RejectionReason string

const (
	RejectionInvalidCategory     RejectionReason = "invalid_category"
	RejectionUnsupportedCurrency RejectionReason = "unsupported_currency"
	RejectionInvalidAmount       RejectionReason = "invalid_amount"
	RejectionFutureDated         RejectionReason = "future_dated"
	RejectionInvalidAccount      RejectionReason = "invalid_account"
)

// Err maps the reason to its sentinel error.
func (r RejectionReason) Err() error {
	switch r {
	case RejectionInvalidCategory:
		return ErrInvalidCategory
	case RejectionUnsupportedCurrency:
		return ErrUnsupportedCurrency
	case RejectionInvalidAmount:
		return ErrInvalidAmount
	case RejectionFutureDated:
		return ErrFutureDated
	case RejectionInvalidAccount:
		return ErrInvalidAccount
	default:
		return nil
	}
}

type RecordOutcome struct {
	Status      RecordStatus
	Reason      RejectionReason
	Transaction Transaction
}

func Recorded(transaction Transaction) RecordOutcome {
	return RecordOutcome{Status: RecordStatusRecorded, Transaction: transaction}
}

func Rejected(reason RejectionReason) RecordOutcome {
	return RecordOutcome{Status: RecordStatusRejected, Reason: reason}
}

func (o RecordOutcome) IsRecorded() bool {
	return o.Status == RecordStatusRecorded
}
