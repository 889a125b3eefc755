package config

// StorageSection selects and parameterizes the persistence backend.
type StorageSection struct {
	// Driver is one of "memory", "sqlite", "postgres". Empty means sqlite.
	Driver string `yaml:"driver,omitempty"`

	// SQLitePath is the database file for the sqlite driver.
	SQLitePath string `yaml:"sqlite_path,omitempty"`

	// PostgresDSN is the connection string for the postgres driver.
	PostgresDSN string `yaml:"postgres_dsn,omitempty"`
}

// ArchiveSection selects and parameterizes the snapshot archive backend.
type ArchiveSection struct {
	// Driver is one of "fs", "s3", "memory". Empty means fs.
	Driver string `yaml:"driver,omitempty"`

	// FSRoot is the root directory for the fs driver.
	FSRoot string `yaml:"fs_root,omitempty"`
}

// HTTPSection configures the REST adapter.
type HTTPSection struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

// LogSection configures the default logger.
type LogSection struct {
	// Level is one of "trace", "debug", "info", "warn", "error".
	Level string `yaml:"level,omitempty"`

	// Format is "json" or "text". Empty means text.
	Format string `yaml:"format,omitempty"`
}

// ProviderSection declares one virtual attribute provider instance.
type ProviderSection struct {
	// Attribute is the virtual attribute the provider emits.
	Attribute string `yaml:"attribute"`

	// Name selects the provider implementation (e.g. "pibling").
	Name string `yaml:"name"`

	// Settings are passed to the provider verbatim; each provider
	// validates its own keys and values.
	Settings map[string]string `yaml:"settings,omitempty"`
}

// Config is the root of a dircored configuration file.
//
// The format is versioned to support future evolution without breaking
// changes.
type Config struct {
	// Version is the config file format version (optional, currently always 1).
	Version int `yaml:"version,omitempty"`

	// Suffix is the DN under which all entries live, e.g. "dc=example,dc=com".
	Suffix string `yaml:"suffix"`

	Log       LogSection        `yaml:"log,omitempty"`
	HTTP      HTTPSection       `yaml:"http,omitempty"`
	Storage   StorageSection    `yaml:"storage,omitempty"`
	Archive   ArchiveSection    `yaml:"archive,omitempty"`
	Providers []ProviderSection `yaml:"providers,omitempty"`
}
