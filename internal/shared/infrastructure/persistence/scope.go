package persistence

import "gorm.io/gorm"

// Scope is a composable query fragment. Predicates, ordering and paging
// are all expressed as scopes and translated to SQL by the ORM.
type Scope func(*gorm.DB) *gorm.DB

// Where filters rows, e.g. Where("name = ?", "Laptops").
func Where(query any, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

// Not excludes rows matching the condition.
func Not(query any, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Not(query, args...)
	}
}

// OrderBy sorts rows, e.g. OrderBy("name").
func OrderBy(value any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(value)
	}
}

// QueryOption adjusts how a read is executed.
type QueryOption func(*queryOptions)

type queryOptions struct {
	tracked  bool
	includes []string
}

// Tracked makes the results tracked by the context: the identity map
// returns existing instances and later SaveChanges persists in-place edits.
func Tracked() QueryOption {
	return func(o *queryOptions) { o.tracked = true }
}

// Include eager-loads navigation relationships by field name, using dots
// for nested paths, e.g. Include("Model.Type", "Space").
func Include(names ...string) QueryOption {
	return func(o *queryOptions) { o.includes = append(o.includes, names...) }
}

func buildOptions(opts []QueryOption) queryOptions {
	var o queryOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
