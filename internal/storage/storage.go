package storage

import "ammledger/internal/model"

// OutcomeSink receives outcome records in journal order.
type OutcomeSink interface {
	PutOutcomes(outcomes []model.Outcome) error
}
