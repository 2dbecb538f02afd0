package specification

import "gorm.io/gorm"

// Specification is a composable query predicate. Repository finders accept
// any number of them and apply each to the statement in turn.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
