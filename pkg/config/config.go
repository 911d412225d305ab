// Package config は環境変数と .env ファイルから実行時設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Platform はストレージ実装を決める実行環境です。起動時に1回だけ決まります。
type Platform string

const (
	PlatformH5    Platform = "h5"    // プロセス内メモリ
	PlatformWeapp Platform = "weapp" // 端末ローカルの bbolt + 画像ファイル
	PlatformRedis Platform = "redis" // サーバー側 Redis
)

// ErrInvalidPlatform は未知のプラットフォームが指定された場合に返されます。
var ErrInvalidPlatform = errors.New("不明なプラットフォームです")

const (
	DefaultPlatform      = PlatformWeapp
	DefaultAPIBaseURL    = "https://maas-openapi.wanjiedata.com/api"
	DefaultAPIVersion    = "v1beta"
	DefaultModel         = "gemini-3-pro-image-preview"
	DefaultInviteCode    = "xO9h1BTA"
	DefaultHTTPTimeout   = 120 * time.Second
	DefaultReferenceTTL  = 30 * time.Minute
	DefaultRedisAddr     = "localhost:6379"
	defaultDataDirName   = ".newspaper"
	defaultLogLevelValue = "info"
)

// Config は実行時設定です。
type Config struct {
	Platform      Platform
	DataDir       string
	APIBaseURL    string
	APIVersion    string
	Model         string
	UserCenterURL string // 空の場合はユーザーセンター機能を使わない
	InviteCode    string
	RedisAddr     string
	LogLevel      slog.Level
	HTTPTimeout   time.Duration
	ReferenceTTL  time.Duration
}

// Load は envFiles (省略時は ./.env) を読み込んだ後、環境変数から Config を作成します。
// .env が存在しないことはエラーにしません。既に設定済みの環境変数は上書きされません。
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf(".env ファイル %s の読み込みに失敗しました: %w", f, err)
		}
	}

	platform, err := ParsePlatform(getEnv("NEWSPAPER_PLATFORM", string(DefaultPlatform)))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Platform:      platform,
		DataDir:       getEnv("NEWSPAPER_DATA_DIR", defaultDataDir()),
		APIBaseURL:    strings.TrimRight(getEnv("NEWSPAPER_API_BASE_URL", DefaultAPIBaseURL), "/"),
		APIVersion:    getEnv("NEWSPAPER_API_VERSION", DefaultAPIVersion),
		Model:         getEnv("NEWSPAPER_MODEL", DefaultModel),
		UserCenterURL: os.Getenv("NEWSPAPER_USER_CENTER_URL"),
		InviteCode:    getEnv("NEWSPAPER_INVITE_CODE", DefaultInviteCode),
		RedisAddr:     getEnv("NEWSPAPER_REDIS_ADDR", DefaultRedisAddr),
		LogLevel:      parseLogLevel(getEnv("NEWSPAPER_LOG_LEVEL", defaultLogLevelValue)),
		HTTPTimeout:   getEnvDuration("NEWSPAPER_HTTP_TIMEOUT_SECONDS", time.Second, DefaultHTTPTimeout),
		ReferenceTTL:  getEnvDuration("NEWSPAPER_REFERENCE_CACHE_TTL_MINUTES", time.Minute, DefaultReferenceTTL),
	}
	return cfg, nil
}

// ParsePlatform は文字列を Platform に変換します。大文字小文字は区別しません。
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformH5, PlatformWeapp, PlatformRedis:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPlatform, s)
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getEnvDuration は数値の環境変数を unit 単位の期間として読みます。0 以下や数値でない値は def です。
func getEnvDuration(key string, unit, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := cast.ToIntE(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		slog.Warn("環境変数の値が不正なため既定値を使用します", "key", key, "value", v)
		return def
	}
	return time.Duration(n) * unit
}

func parseLogLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDataDirName
	}
	return filepath.Join(home, defaultDataDirName)
}
