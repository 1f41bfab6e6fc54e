// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Defaults carry the compiled-in roster, criteria and passphrase; a YAML
//   file or environment variables may override the operational knobs.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorePath locates the append-only CSV answer store.
	StorePath string `koanf:"store_path"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize sets the size of the submission-id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// OrganizerPassphrase gates the organizer panel. Plain equality compare;
	// this is an access convenience, not a security boundary.
	OrganizerPassphrase string `koanf:"organizer_passphrase"`

	// Criteria lists the five evaluation criteria, in column order.
	Criteria []string `koanf:"criteria"`

	// Subgroups maps subgroup name to its four members, in roster order.
	Subgroups map[string][]string `koanf:"subgroups"`
}

// New creates a Config with the compiled-in defaults. Roster, criteria and
// passphrase mirror the original ATSR form.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		StorePath:           "respostas_ATSR.csv",
		QueueSize:           1024,
		DedupeSize:          10_000,
		OrganizerPassphrase: "organizador",
		Criteria: []string{
			"Comunicação",
			"Eficiência durante o processo",
			"Participação e presença",
			"Processo criativo e insights",
			"Responsabilidade e precedência",
		},
		Subgroups: map[string][]string{
			"Subgrupo 01": {"Artur Prazeres", "Filipe Correia", "Thiago Carvalho", "Walter Maia"},
			"Subgrupo 02": {"João Carlos", "João Patriota", "João Pessôa", "Mateus Dornellas"},
			"Subgrupo 03": {"Antônio Manoel", "Breno Santiago", "Gabriel Ribeiro", "João Henrique"},
		},
	}
}
