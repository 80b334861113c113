package driven

// ConfigStore is a flat key/value view of the settings file. Keys are
// dotted paths such as "pipeline.max_themes". Typed getters return the
// zero value for missing keys and for values of another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	// GetFloat also accepts integer values.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set writes through to storage immediately.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path locates the backing file, for display.
	Path() string
}
