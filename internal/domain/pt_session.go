package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionDateLayout is the calendar-day format PT sessions are keyed by.
const SessionDateLayout = "2006-01-02"

// SessionTimeLayout is the 24-hour HH:MM start time of a scheduled session.
const SessionTimeLayout = "15:04"

// PTSession is a flight's PT formation on one day and who showed up.
type PTSession struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Date      string               `bson:"date" json:"date"` // YYYY-MM-DD
	Flight    Flight               `bson:"flight" json:"flight"`
	Attendees []primitive.ObjectID `bson:"attendees" json:"attendees"`
	CreatedBy primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Attended reports whether memberID is on the attendee list.
func (s *PTSession) Attended(memberID primitive.ObjectID) bool {
	return containsID(s.Attendees, memberID)
}

// ScheduledSession is an upcoming PT formation announced by a leader.
type ScheduledSession struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date        string             `bson:"date" json:"date"` // YYYY-MM-DD
	Time        string             `bson:"time" json:"time"` // HH:MM, 24-hour
	Description string             `bson:"description" json:"description"`
	Flight      Flight             `bson:"flight" json:"flight"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
