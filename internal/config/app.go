package config

type AppConfig struct {
	DefaultSavingMode    string `yaml:"default-saving-mode"`
	SentinelUserName     string `yaml:"sentinel-user"`
	ResyncDelaySeconds   int64  `yaml:"resync-delay-seconds"`
	AsyncSummaryRequests bool   `yaml:"async-summary"`
	MetricsPortNumber    int    `yaml:"metrics-port"`
}

const (
	defaultSavingMode  = "agorot"
	defaultSentinel    = "defaultUser"
	defaultResyncDelay = 30
)

func (s *AppConfig) DefaultMode() string {
	if s.DefaultSavingMode == "" {
		return defaultSavingMode
	}
	return s.DefaultSavingMode
}

func (s *AppConfig) SentinelUser() string {
	if s.SentinelUserName == "" {
		return defaultSentinel
	}
	return s.SentinelUserName
}

func (s *AppConfig) ResyncDelay() int64 {
	if s.ResyncDelaySeconds <= 0 {
		return defaultResyncDelay
	}
	return s.ResyncDelaySeconds
}

func (s *AppConfig) AsyncSummary() bool {
	return s.AsyncSummaryRequests
}

func (s *AppConfig) MetricsPort() int {
	return s.MetricsPortNumber
}
