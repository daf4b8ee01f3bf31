package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// RedisConfig holds the `redis`/`redis_connection` INI section: connection
// details for the backing store.
type RedisConfig struct {
	Host            string
	Port            int
	DecodeResponses bool
}

// ExtractorConfig holds the `extractor` INI section: run parameters for the
// extraction pipeline.
type ExtractorConfig struct {
	Database         int
	BatchSize        int
	ExportVariations bool
}

// StoreConfig is the fully decoded store connection configuration file.
type StoreConfig struct {
	Redis     RedisConfig
	Extractor ExtractorConfig
}

// LoadStoreConfig reads and decodes path as the INI store connection
// configuration: sections `redis`/`redis_connection` with keys `host`,
// `port`, `decode_responses`; section `extractor` with `database`,
// `batch_size`, `export_variations`. Either `redis` or `redis_connection`
// is accepted as the connection section name, matching the two historical
// names seen in the wild for this file. A file with neither connection
// section is an [ErrConfig]; a missing `extractor` section or key takes its
// default value.
func LoadStoreConfig(path string) (*StoreConfig, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s: %v", ErrConfig, path, err)
	}

	if !f.HasSection("redis") && !f.HasSection("redis_connection") {
		return nil, fmt.Errorf("%w: %s: missing redis or redis_connection section", ErrConfig, path)
	}

	section := f.Section("redis")
	if !f.HasSection("redis") && f.HasSection("redis_connection") {
		section = f.Section("redis_connection")
	}

	cfg := &StoreConfig{
		Redis: RedisConfig{
			Host:            section.Key("host").MustString("localhost"),
			Port:            section.Key("port").MustInt(6379),
			DecodeResponses: section.Key("decode_responses").MustBool(true),
		},
	}

	ext := f.Section("extractor")
	cfg.Extractor = ExtractorConfig{
		Database:         ext.Key("database").MustInt(0),
		BatchSize:        ext.Key("batch_size").MustInt(1000),
		ExportVariations: ext.Key("export_variations").MustBool(false),
	}

	return cfg, nil
}

// Addr returns the "host:port" address [RedisConfig] describes, suitable
// for github.com/redis/go-redis/v9's Options.Addr.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
