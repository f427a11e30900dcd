package commands

import (
	"fmt"
	"time"

	"github.com/fivetwenty-io/zsubs-client/internal/constants"
	"github.com/fivetwenty-io/zsubs-client/internal/logging"
	"github.com/fivetwenty-io/zsubs-client/pkg/zsclient"
	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CreateClient builds an API client from the effective configuration.
func CreateClient(cmd *cobra.Command) (zsubs.Client, error) {
	config, err := clientConfig(loadConfig(), viper.GetBool("verbose"))
	if err != nil {
		return nil, err
	}

	client, err := zsclient.New(cmd.Context(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

func clientConfig(config *Config, verbose bool) (*zsubs.Config, error) {
	if config.Token == "" {
		return nil, constants.ErrNoToken
	}

	cfg := &zsubs.Config{
		APIEndpoint:    config.API,
		AccessToken:    config.Token,
		OrganizationID: config.Organization,
		MaxPages:       config.MaxPages,
		RetryMax:       config.Retries,
	}

	if config.Cache.TTL != "" {
		ttl, err := time.ParseDuration(config.Cache.TTL)
		if err != nil {
			return nil, fmt.Errorf("invalid cache.ttl %q: %w", config.Cache.TTL, err)
		}

		cfg.CacheTTL = ttl
	}

	cacheType := zsubs.CacheType(config.Cache.Type)
	if cacheType != "" && cacheType != zsubs.CacheTypeMemory {
		cache, err := zsubs.NewCacheBuilder(cacheType).
			WithNATS(config.Cache.NATSURL, config.Cache.Bucket, cfg.CacheTTL).
			Config()
		if err != nil {
			return nil, err
		}

		cfg.Cache = cache
	}

	if verbose {
		logger, err := logging.New(logging.Config{Level: logging.LevelDebug, ServiceName: "zsubs-cli"})
		if err != nil {
			return nil, err
		}

		cfg.Logger = logger
		cfg.Debug = true
	}

	return cfg, nil
}
