package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// parseEnv overlays Config with environment variables. A dotenv file named
// by -env is loaded first (and must exist); otherwise ./.env is loaded when
// present. Variables already set in the process environment win over the
// file, as godotenv never overrides them.
//
// Recognized variables:
//
//	HTTP_ADDR (or PORT), DATABASE_DSN, DATABASE_CONNECT_TIMEOUT, SECRET_KEY,
//	TOKEN_VALIDITY_DURATION, BCRYPT_COST, AVATAR_STORAGE, AVATAR_DIR,
//	AVATAR_MAX_UPLOAD_BYTES, AVATAR_MEMORY_CACHE_SIZE, AVATAR_MEMORY_CACHE_TTL,
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT,
//	LOG_LEVEL, LOG_FORMAT, SHUTDOWN_TIMEOUT, CORS_ALLOWED_ORIGINS
//
// Durations use Go syntax ("24h"). Malformed values panic.
func parseEnv(config *Config) {
	loadEnvFile()

	if port := os.Getenv("PORT"); port != "" {
		config.HTTPAddr = ":" + port
	}
	setString(&config.HTTPAddr, "HTTP_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setDuration(&config.DatabaseConnectTimeout, "DATABASE_CONNECT_TIMEOUT")
	setString(&config.SecretKey, "SECRET_KEY")
	setDuration(&config.TokenValidityDuration, "TOKEN_VALIDITY_DURATION")
	setInt(&config.BcryptCost, "BCRYPT_COST")
	setString(&config.AvatarStorage, "AVATAR_STORAGE")
	setString(&config.AvatarDir, "AVATAR_DIR")
	setInt64(&config.AvatarMaxUploadBytes, "AVATAR_MAX_UPLOAD_BYTES")
	setInt(&config.AvatarMemoryCacheSize, "AVATAR_MEMORY_CACHE_SIZE")
	setDuration(&config.AvatarMemoryCacheTTL, "AVATAR_MEMORY_CACHE_TTL")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setString(&config.LogLevel, "LOG_LEVEL")
	setString(&config.LogFormat, "LOG_FORMAT")
	setDuration(&config.ShutdownTimeout, "SHUTDOWN_TIMEOUT")

	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		config.CORSAllowedOrigins = splitList(v)
	}
}

func loadEnvFile() {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}

	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = n
}

func setInt64(dst *int64, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = n
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
