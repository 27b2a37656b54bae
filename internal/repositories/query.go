package repositories

import (
	"strings"
)

// SortOrder is the direction of a listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort selects the ordering of a listing. Unknown fields fall back to the
// listing's default field rather than failing.
type Sort struct {
	Field string
	Order SortOrder
}

func (o SortOrder) sql() string {
	if strings.EqualFold(string(o), string(SortDesc)) {
		return "DESC"
	}
	return "ASC"
}

// resolve returns the column to order by and the SQL direction, falling back
// to defaults for an unknown field or an empty order.
func (s Sort) resolve(allowed []string, defaultField string, defaultOrder SortOrder) (string, string) {
	field := defaultField
	for _, candidate := range allowed {
		if s.Field == candidate {
			field = candidate
			break
		}
	}
	order := s.Order
	if order == "" {
		order = defaultOrder
	}
	return field, order.sql()
}

// containsPattern builds a case-insensitive LIKE pattern for a substring match.
func containsPattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

// UserFilter narrows the user directory.
type UserFilter struct {
	Name    string
	Email   string
	Address string
	Role    string
	Sort    Sort
}

// StoreFilter narrows the store directory. ViewerID, when set, joins that
// user's own rating onto each store.
type StoreFilter struct {
	Name     string
	Address  string
	Category string
	ViewerID string
	Sort     Sort
}

// RatingFilter narrows the rating listing.
type RatingFilter struct {
	UserID       string
	StoreID      string
	StoreOwnerID string
	Sort         Sort
}

var (
	userSortFields   = []string{"name", "email", "address", "role", "created_at", "rating"}
	storeSortFields  = []string{"name", "address", "category", "average_rating", "total_ratings", "created_at"}
	ratingSortFields = []string{"rating", "created_at", "updated_at"}
)
