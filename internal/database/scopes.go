package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/project-dashboard-api/internal/utils"
)

// Paginate limits a query to one page window.
func Paginate(w utils.PageWindow) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(w.Offset()).Limit(w.Size)
	}
}

// Search matches term case-insensitively against any of the given columns.
// An empty term leaves the query unchanged.
func Search(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}

		pattern := "%" + strings.ToLower(term) + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}
