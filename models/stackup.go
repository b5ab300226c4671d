package models

import (
	"time"

	"github.com/google/uuid"

	"tolninja/domain/stackup"
)

// StackupRecord is the stored form of a stackup: the definition plus the
// summary of its most recent analysis, if any.
type StackupRecord struct {
	ID         uuid.UUID                 `db:"id" json:"id"`
	Name       string                    `db:"name" json:"name"`
	Revision   string                    `db:"revision" json:"revision"`
	Definition stackup.StackupDefinition `json:"definition"`
	Summary    *stackup.SummaryData      `json:"summary,omitempty"`
	CreatedAt  time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time                 `db:"updated_at" json:"updated_at"`
}
