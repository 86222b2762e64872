package model

// Sequence names
const (
	SequenceOrderNumber = "order_number"
)

// Sequence is a persisted business-number counter. The generator service
// increments it under an advisory lock; nothing else touches it.
type Sequence struct {
	Name  string `gorm:"type:varchar(50);primaryKey" json:"name"`
	Value int64  `gorm:"type:bigint;default:0;not null" json:"value"`
}
