// Package pagination provides offset pagination over GORM queries.
package pagination

import "gorm.io/gorm"

// DefaultPerPage matches the page size of the public API.
const DefaultPerPage = 20

// MaxPerPage caps client-supplied page sizes.
const MaxPerPage = 100

// Pagination is the metadata returned alongside a paginated collection.
type Pagination struct {
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// Clamp normalises page/perPage to sane bounds.
func Clamp(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// Paginate counts the query, applies offset/limit, and scans into dest.
// The passed query must already carry its model, joins and filters.
func Paginate(query *gorm.DB, page, perPage int, dest interface{}) (Pagination, error) {
	page, perPage = Clamp(page, perPage)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	if err := query.Offset((page - 1) * perPage).Limit(perPage).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}

	return Pagination{Page: page, PerPage: perPage, Total: total, LastPage: last}, nil
}
