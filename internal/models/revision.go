package models

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Revision identifies one committed store change. Revisions sort by commit time.
type Revision string

// NewRevision returns a revision stamped with t.
func NewRevision(t time.Time) Revision {
	return Revision(ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String())
}

// Time returns the commit time encoded in the revision.
// A malformed revision yields the zero time.
func (r Revision) Time() time.Time {
	id, err := ulid.Parse(string(r))
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(id.Time())
}

// String implements fmt.Stringer.
func (r Revision) String() string {
	return string(r)
}
