package config

// TelegramConfig carries the bot API token. Supply it via the config file,
// never commit a real one.
type TelegramConfig struct {
	BotToken string `yaml:"token"`
}

func (t *TelegramConfig) Token() string {
	return t.BotToken
}
