package dto

// FilterOptions lists the values available for the dashboard filters.
type FilterOptions struct {
	Labels  []string `json:"labels"`
	Sources []string `json:"sources"`
}
