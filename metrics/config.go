package metrics

// Config contains the configuration for the metric collection.
type Config struct {
	Enabled bool   `toml:",omitempty"`
	HTTP    string `toml:",omitempty"`
	Port    int    `toml:",omitempty"`
	// Namespace prefixes every exported series name.
	Namespace string `toml:",omitempty"`
}

// DefaultConfig is the default config for metrics used in ratingd.
var DefaultConfig = Config{
	Enabled:   false,
	HTTP:      "127.0.0.1",
	Port:      6060,
	Namespace: "ratingd",
}
