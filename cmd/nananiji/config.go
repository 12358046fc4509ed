package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	nananiji "github.com/komori-n/nananiji-calculator"
	"github.com/komori-n/nananiji-calculator/codec"
	"github.com/komori-n/nananiji-calculator/persistence"
)

// Config is the optional YAML configuration given with --config.
//
//	store:
//	  backend: s3          # local | s3 | minio | badger
//	  bucket: generators
//	  prefix: nananiji/
//	  region: ap-northeast-1
//	  table: nananiji-generators   # s3 only: version blobs through DynamoDB
//	  codec: go-json       # json | go-json
//	  compression: zstd    # none | lz4 | zstd
//	log:
//	  level: info
//	  format: json
//	http:
//	  addr: ":8080"        # serve --http overrides it
type Config struct {
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`
	HTTP  HTTPConfig  `yaml:"http"`
}

// StoreConfig selects where generators are saved and loaded.
type StoreConfig struct {
	Backend   string `yaml:"backend" validate:"oneof=local s3 minio badger"`
	Dir       string `yaml:"dir" validate:"required_if=Backend badger"`
	Bucket    string `yaml:"bucket" validate:"required_if=Backend s3,required_if=Backend minio"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint" validate:"required_if=Backend minio"`
	PathStyle bool   `yaml:"path_style"`
	Secure    *bool  `yaml:"secure"`
	Table     string `yaml:"table"`

	// Encoding of snapshots written with -w. Loading follows the header.
	Codec       string `yaml:"codec" validate:"codec"`
	Compression string `yaml:"compression" validate:"compression"`

	// Read from MINIO_ACCESS_KEY and MINIO_SECRET_KEY when empty.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// LogConfig configures the stderr logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// HTTPConfig configures serve --http.
type HTTPConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("codec", func(fl validator.FieldLevel) bool {
		return slices.Contains(codec.Names(), fl.Field().String())
	})
	_ = v.RegisterValidation("compression", func(fl validator.FieldLevel) bool {
		_, err := persistence.ParseCompression(fl.Field().String())
		return err == nil
	})
	return v
}

// encoding returns the options selecting the configured codec and
// compression. The config must have passed validate.
func (c StoreConfig) encoding() ([]nananiji.Option, error) {
	cd, ok := codec.ByName(c.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", c.Codec)
	}
	comp, err := persistence.ParseCompression(c.Compression)
	if err != nil {
		return nil, err
	}
	return []nananiji.Option{nananiji.WithCodec(cd), nananiji.WithCompression(comp)}, nil
}

func (c Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Backend:     "local",
			Dir:         ".",
			Codec:       codec.Default.Name(),
			Compression: persistence.CompressionZSTD.String(),
		},
		Log: LogConfig{Level: "warn", Format: "text"},
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Store.AccessKey == "" {
		cfg.Store.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
	}
	if cfg.Store.SecretKey == "" {
		cfg.Store.SecretKey = os.Getenv("MINIO_SECRET_KEY")
	}
	return cfg, cfg.validate()
}
