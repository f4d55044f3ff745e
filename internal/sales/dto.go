package sales

import (
	"time"

	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/pagination"
)

// ListFilters narrows a sale listing.
type ListFilters struct {
	From *time.Time
	To   *time.Time
}

// ListQuery bundles pagination and filters for sale listings.
type ListQuery struct {
	Pagination pagination.Params
	Filters    ListFilters
}

// ListResult is one cursor page of sales.
type ListResult struct {
	Sales      []models.Sale `json:"sales"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
