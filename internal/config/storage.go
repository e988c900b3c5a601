package config

// Storage backends. The file backend keeps one file per logical key under
// Dir; postgres keeps the same data relationally.
const (
	MemoryBackend   = "memory"
	FileBackend     = "file"
	PostgresBackend = "postgres"
)

type StorageConfig struct {
	BackendName string `yaml:"backend"`
	DataDir     string `yaml:"dir"`
}

func (s *StorageConfig) Backend() string {
	if s.BackendName == "" {
		return FileBackend
	}
	return s.BackendName
}

func (s *StorageConfig) Dir() string {
	if s.DataDir == "" {
		return "data/store"
	}
	return s.DataDir
}
