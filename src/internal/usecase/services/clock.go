package services

import (
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
)

// Clock supplies "now" and the location that calendar months are cut in.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func SystemClock(location *time.Location) Clock {
	return Clock{Now: time.Now, Location: location}
}

func (c Clock) now() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().In(c.location())
}

func (c Clock) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// monthOf returns the start of the calendar month containing t.
func (c Clock) monthOf(t time.Time) time.Time {
	return domain.MonthStart(t.In(c.location()))
}
