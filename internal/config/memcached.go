package config

type MemcachedConfig struct {
	CacheEnabled bool     `yaml:"enabled"`
	NodeHosts    []string `yaml:"hosts"`
}

func (s *MemcachedConfig) Enabled() bool {
	return s.CacheEnabled
}

func (s *MemcachedConfig) Hosts() []string {
	return s.NodeHosts
}
