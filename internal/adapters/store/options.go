package store

// Option applies a configuration option to the CSVStore.
type Option func(*CSVStore)

// WithPath sets the answer file location.
func WithPath(path string) Option {
	return func(s *CSVStore) {
		if path != "" {
			s.path = path
		}
	}
}

// WithCriteria sets the ordered criterion column names.
func WithCriteria(criteria []string) Option {
	return func(s *CSVStore) {
		if len(criteria) > 0 {
			s.criteria = append([]string(nil), criteria...)
		}
	}
}
