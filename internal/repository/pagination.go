package repository

import "gorm.io/gorm"

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(query *gorm.DB) *gorm.DB {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}
