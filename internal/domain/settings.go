package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bounds for the squadron-wide default weekly PT requirement.
const (
	MinSessionsPerWeek = 1
	MaxSessionsPerWeek = 7
)

// Settings holds squadron-wide knobs editable by the creator and UFPM.
type Settings struct {
	DefaultPTSessionsPerWeek int                `bson:"defaultPTSessionsPerWeek" json:"defaultPTSessionsPerWeek"`
	UpdatedBy                primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	UpdatedAt                time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
