package config

const (
	defaultPostgresPort = "5432"
	defaultDatabase     = "roundup"
)

type PostgresConfig struct {
	DbHost     string `yaml:"host"`
	DbPort     string `yaml:"port"`
	DbName     string `yaml:"db"`
	DbUser     string `yaml:"username"`
	DbPassword string `yaml:"password"`
}

func (p *PostgresConfig) Host() string {
	return p.DbHost
}

func (p *PostgresConfig) Port() string {
	if p.DbPort == "" {
		return defaultPostgresPort
	}
	return p.DbPort
}

func (p *PostgresConfig) Database() string {
	if p.DbName == "" {
		return defaultDatabase
	}
	return p.DbName
}

func (p *PostgresConfig) Username() string {
	return p.DbUser
}

func (p *PostgresConfig) Password() string {
	return p.DbPassword
}
