package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

const (
	defaultBaseURL   = "https://api.droidcon.co.ke/v1"
	defaultEventSlug = "droidconke-2022-797"
)

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("droidconke.base_url", defaultBaseURL)
	viper.SetDefault("droidconke.event_slug", defaultEventSlug)
	viper.SetDefault("droidconke.per_page.sponsors", 10)
	viper.SetDefault("droidconke.per_page.sessions", 20)
	viper.SetDefault("droidconke.per_page.speakers", 20)
	viper.SetDefault("auth.token_store", "env")
	viper.SetDefault("auth.token_key", "droidconke:auth:token")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("cache.expiration", "10m")
	viper.SetDefault("tracing.service_name", "droidconke-feeds")
	viper.SetDefault("rate_limiter.trust_forwarded_for", false)
}

func initConfig() {
	once.Do(func() {
		setDefaults()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Errorw("Error finding project root", "error", err)
		}
		viper.SetConfigType("yaml")

		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			viper.AddConfigPath(root)
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Errorw("Error reading test config file", "error", err)
			}
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// GetDroidconKEBaseURL returns the upstream API base URL without a trailing slash.
func GetDroidconKEBaseURL() string {
	initConfig()
	return strings.TrimRight(viper.GetString("droidconke.base_url"), "/")
}

func GetEventSlug() string {
	initConfig()
	return viper.GetString("droidconke.event_slug")
}

// GetPerPage returns the page size requested for the given resource
// (sponsors, sessions or speakers). Unconfigured resources get 10.
func GetPerPage(resource string) int {
	initConfig()
	n := viper.GetInt("droidconke.per_page." + resource)
	if n <= 0 {
		return 10
	}
	return n
}

// GetDroidconKEAPIToken returns the bearer token from the environment,
// loading .env first if one exists.
func GetDroidconKEAPIToken() string {
	_ = godotenv.Load()
	return os.Getenv("DROIDCONKE_API_TOKEN")
}

// GetTokenStore returns where the bearer token is read from: "env" or "redis".
func GetTokenStore() string {
	initConfig()
	return viper.GetString("auth.token_store")
}

func GetTokenKey() string {
	initConfig()
	return viper.GetString("auth.token_key")
}

func GetRedisAddr() string {
	initConfig()
	return viper.GetString("redis.addr")
}

func GetServerPort() string {
	initConfig()
	serverPort := viper.GetString("server.port")
	return serverPort
}

// GetCacheExpiration returns the TTL of cached listings. Defaults to 10m.
func GetCacheExpiration() time.Duration {
	initConfig()
	return getDuration("cache.expiration", 10*time.Minute)
}

// GetServerTimeout returns server.<key> as a duration, or fallback when unset or invalid.
func GetServerTimeout(key string, fallback time.Duration) time.Duration {
	initConfig()
	return getDuration("server."+key, fallback)
}

// GetCircuitBreakerConfig returns how many consecutive upstream failures open
// the breaker and how long it stays open.
func GetCircuitBreakerConfig() (maxFailures uint32, openTimeout time.Duration) {
	initConfig()
	maxFailures = viper.GetUint32("circuit_breaker.max_failures")
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout = getDuration("circuit_breaker.open_timeout", 30*time.Second)
	return
}

func GetTracingEndpoint() string {
	initConfig()
	return viper.GetString("tracing.endpoint")
}

func GetTracingServiceName() string {
	initConfig()
	return viper.GetString("tracing.service_name")
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// GetTrustForwardedFor reports whether X-Forwarded-For identifies the client.
// Enable it only behind a proxy that overwrites the header.
func GetTrustForwardedFor() bool {
	initConfig()
	return viper.GetBool("rate_limiter.trust_forwarded_for")
}

// GetRateLimiterCleanupTimeout returns the rate limiter cleanup timeout as a time.Duration.
// Defaults to 3m if not set or invalid.
func GetRateLimiterCleanupTimeout() time.Duration {
	initConfig()
	return getDuration("rate_limiter.cleanup_timeout", 3*time.Minute)
}

// GetGlobalRateLimiterConfig returns the per-minute rate and burst for the global rate limiter from config.
func GetGlobalRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.global.rate")
	if rate == 0 {
		rate = 10
	}
	burst = viper.GetInt("rate_limiter.global.burst")
	if burst == 0 {
		burst = 10
	}
	return
}

// GetParamRateLimiterConfig returns the per-minute rate and burst for the per-resource rate limiter from config.
func GetParamRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.param.rate")
	if rate == 0 {
		rate = 2
	}
	burst = viper.GetInt("rate_limiter.param.burst")
	if burst == 0 {
		burst = 2
	}
	return
}

func getDuration(key string, fallback time.Duration) time.Duration {
	durStr := viper.GetString(key)
	if durStr == "" {
		return fallback
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil || dur <= 0 {
		return fallback
	}
	return dur
}
