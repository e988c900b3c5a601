package cache

import (
	"github.com/pkg/errors"

	"go.uber.org/zap"

	"max.ks1230/roundup-bot/internal/logger"

	"github.com/bradfitz/gomemcache/memcache"
)

const summaryOption = "summary"

type MemcacheClient struct {
	client *memcache.Client
}

type config interface {
	Hosts() []string
}

func NewMemcache(config config) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	return &MemcacheClient{mc}, mc.Ping()
}

func formatKey(username, option string) string {
	return username + ":" + option
}

func (mc *MemcacheClient) CacheSummary(username, summary string) error {
	logger.Info("cache summary", zap.String("user", username))
	return mc.client.Set(&memcache.Item{
		Key:   formatKey(username, summaryOption),
		Value: []byte(summary)},
	)
}

func (mc *MemcacheClient) GetSummary(username string) (string, error) {
	logger.Info("get summary from cache", zap.String("user", username))
	item, err := mc.client.Get(formatKey(username, summaryOption))
	if err != nil {
		return "", err
	}
	return string(item.Value), nil
}

// InvalidateSummary drops the cached summary after any ledger mutation.
func (mc *MemcacheClient) InvalidateSummary(username string) error {
	logger.Info("invalidate summary cache", zap.String("user", username))

	err := mc.client.Delete(formatKey(username, summaryOption))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}
