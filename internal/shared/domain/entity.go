package domain

// Entity is implemented by every persisted record. It exposes the integer
// identity used by the identity map and by insert-or-update decisions.
type Entity interface {
	EntityID() int
	EntityName() string
}

// Versioned is implemented by entities that carry a row version used for
// optimistic concurrency checks.
type Versioned interface {
	RowVersion() int
	SetRowVersion(v int)
}

// Record is embedded by entities to get a version column.
type Record struct {
	Version int `gorm:"column:version;not null" json:"version"`
}

// RowVersion returns the current row version.
func (r Record) RowVersion() int { return r.Version }

// SetRowVersion replaces the row version.
func (r *Record) SetRowVersion(v int) { r.Version = v }

// SameEntity reports whether a and b refer to the same stored row.
func SameEntity(a, b Entity) bool {
	if a == nil || b == nil {
		return false
	}
	return a.EntityName() == b.EntityName() && a.EntityID() == b.EntityID()
}
