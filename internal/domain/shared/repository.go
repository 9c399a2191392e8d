package shared

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	// Offset, when positive, takes precedence over the Page-derived offset.
	Offset   int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}
