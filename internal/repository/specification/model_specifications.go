package specification

import "gorm.io/gorm"

// ByModelName filters the model catalog by model name.
type ByModelName struct {
	Name string
}

func (s ByModelName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

// ActiveOnly selects catalog entries that are enabled for use.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}
