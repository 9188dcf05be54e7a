package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/flagx"
	"github.com/dmitrijs2005/profilekeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "24h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, the fields that are present are
// copied into the runtime Config struct.
type JsonConfig struct {
	HTTPAddr               string         `json:"http_addr"`
	DatabaseDSN            string         `json:"database_dsn"`
	DatabaseConnectTimeout timex.Duration `json:"database_connect_timeout"`
	SecretKey              string         `json:"secret_key"`
	TokenValidityDuration  timex.Duration `json:"token_validity_duration"`
	BcryptCost             int            `json:"bcrypt_cost"`
	AvatarStorage          string         `json:"avatar_storage"`
	AvatarDir              string         `json:"avatar_dir"`
	AvatarMaxUploadBytes   int64          `json:"avatar_max_upload_bytes"`
	AvatarMemoryCacheSize  *int           `json:"avatar_memory_cache_size"`
	AvatarMemoryCacheTTL   timex.Duration `json:"avatar_memory_cache_ttl"`
	S3RootUser             string         `json:"s3_root_user"`
	S3RootPassword         string         `json:"s3_root_password"`
	S3Bucket               string         `json:"s3_bucket"`
	S3Region               string         `json:"s3_region"`
	S3BaseEndpoint         string         `json:"s3_base_endpoint"`
	LogLevel               string         `json:"log_level"`
	LogFormat              string         `json:"log_format"`
	ShutdownTimeout        timex.Duration `json:"shutdown_timeout"`
	CORSAllowedOrigins     []string       `json:"cors_allowed_origins"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags. If
// neither is set, no JSON file is loaded. A file that cannot be read or
// contains invalid JSON makes the function panic.
//
// Only keys present in the file (non-zero after decoding) override the
// current values, so a partial file keeps defaults and environment values
// for everything else.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.HTTPAddr, c.HTTPAddr)
	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayDuration(&config.DatabaseConnectTimeout, c.DatabaseConnectTimeout)
	overlayString(&config.SecretKey, c.SecretKey)
	overlayDuration(&config.TokenValidityDuration, c.TokenValidityDuration)
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	overlayString(&config.AvatarStorage, c.AvatarStorage)
	overlayString(&config.AvatarDir, c.AvatarDir)
	if c.AvatarMaxUploadBytes != 0 {
		config.AvatarMaxUploadBytes = c.AvatarMaxUploadBytes
	}
	if c.AvatarMemoryCacheSize != nil {
		config.AvatarMemoryCacheSize = *c.AvatarMemoryCacheSize
	}
	overlayDuration(&config.AvatarMemoryCacheTTL, c.AvatarMemoryCacheTTL)
	overlayString(&config.S3RootUser, c.S3RootUser)
	overlayString(&config.S3RootPassword, c.S3RootPassword)
	overlayString(&config.S3Bucket, c.S3Bucket)
	overlayString(&config.S3Region, c.S3Region)
	overlayString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlayString(&config.LogLevel, c.LogLevel)
	overlayString(&config.LogFormat, c.LogFormat)
	overlayDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
