package repository

import (
	"strings"

	"gorm.io/gorm"
)

// Page is the pagination window shared by list queries.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps the window to page >= 1 and 1 <= limit <= 100.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

func (p Page) scope(db *gorm.DB) *gorm.DB {
	n := p.Normalize()
	return db.Offset((n.Page - 1) * n.Limit).Limit(n.Limit)
}

// orderBy resolves a client sort key against an allow-list of columns.
func orderBy(sortBy, sortOrder string, columns map[string]string, fallback string) string {
	col, ok := columns[sortBy]
	if !ok {
		col = fallback
	}
	dir := "ASC"
	if strings.EqualFold(sortOrder, "desc") {
		dir = "DESC"
	}
	return col + " " + dir
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
