package driven

// ConfigStore holds settings under dotted keys such as "completion.endpoint".
// Typed getters return the zero value for missing or mismatched entries, so
// callers apply their own defaults.
type ConfigStore interface {
	// Get returns the raw value and whether key is set.
	Get(key string) (any, bool)

	GetString(key string) string

	// GetInt accepts numeric values and integer strings.
	GetInt(key string) int

	// Set stores value. Persistent stores write through before returning.
	Set(key string, value any) error

	// Path names where values persist, for display.
	Path() string
}
