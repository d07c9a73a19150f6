package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"microsite-gateway/pkg/ratelimit"
)

// GatewayConfig holds everything the gateway needs at startup.
//
// Values are layered: built-in defaults, then the optional YAML file named
// by GATEWAY_CONFIG_FILE, then environment variable overrides. Invalid
// values degrade to defaults with a warning; only an unreadable or
// unparsable config file fails the load.
type GatewayConfig struct {
	// ListenAddr is the address the gateway serves on.
	ListenAddr string

	// MetricsAddr is the address of the side server exposing /metrics.
	MetricsAddr string

	// UpstreamURL is the application origin requests are forwarded to.
	UpstreamURL string

	// PlatformDomains are the gateway's own domains. A host that is none of
	// these (and not localhost or a raw IP) is treated as a tenant custom
	// domain. Subdomains of a platform domain count as the platform.
	PlatformDomains []string

	// SessionCookie is the name of the cookie carrying the session token.
	SessionCookie string

	// SessionCookies lists every cookie cleared on invalid credentials.
	// Always includes SessionCookie.
	SessionCookies []string

	// TokenIssuer is the issuer claim required in session tokens.
	TokenIssuer string

	// StoreBackend selects the rate limit store: "memory" or "redis".
	StoreBackend string

	// Redis connection settings, used when StoreBackend is "redis".
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TrustedProxies are CIDRs whose X-Forwarded-For headers are honored.
	TrustedProxies []string

	// Policies are the per-traffic-class rate limit thresholds.
	Policies ratelimit.PolicySet

	// SweepSchedule is the cron spec for the background store sweep.
	SweepSchedule string

	// MaxBodyBytes caps inbound request body size; oversized bodies get
	// a 413 before reaching the upstream.
	MaxBodyBytes int64

	// ShutdownTimeout bounds request draining on shutdown.
	ShutdownTimeout time.Duration
}

// gatewayFile is the YAML shape of the config file. Durations are strings
// in time.ParseDuration syntax.
type gatewayFile struct {
	ListenAddr      string     `yaml:"listen_addr"`
	MetricsAddr     string     `yaml:"metrics_addr"`
	UpstreamURL     string     `yaml:"upstream_url"`
	PlatformDomains []string   `yaml:"platform_domains"`
	SessionCookie   string     `yaml:"session_cookie"`
	SessionCookies  []string   `yaml:"session_cookies"`
	TokenIssuer     string     `yaml:"token_issuer"`
	StoreBackend    string     `yaml:"store_backend"`
	RedisAddr       string     `yaml:"redis_addr"`
	RedisPassword   string     `yaml:"redis_password"`
	RedisDB         int        `yaml:"redis_db"`
	TrustedProxies  []string   `yaml:"trusted_proxies"`
	SweepSchedule   string     `yaml:"sweep_schedule"`
	MaxBodyBytes    int64      `yaml:"max_body_bytes"`
	ShutdownTimeout string     `yaml:"shutdown_timeout"`
	RateLimit       policyFile `yaml:"ratelimit"`
}

type policyFile struct {
	Auth    classFile `yaml:"auth"`
	Payment classFile `yaml:"payment"`
	API     classFile `yaml:"api"`
	Public  classFile `yaml:"public"`
}

type classFile struct {
	Window      string `yaml:"window"`
	MaxRequests int    `yaml:"max_requests"`
}

// LoadGatewayConfig builds the gateway configuration from defaults, the
// optional YAML file, and environment overrides, in that order.
func LoadGatewayConfig() (*GatewayConfig, error) {
	cfg := defaultGatewayConfig()

	if path := os.Getenv("GATEWAY_CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Policies.Validate(); err != nil {
		slog.Warn("invalid rate limit policies, using defaults",
			slog.String("error", err.Error()))
		cfg.Policies = ratelimit.DefaultPolicySet()
	}

	if cfg.MaxBodyBytes <= 0 {
		slog.Warn("invalid max body bytes, using default",
			slog.Int64("value", cfg.MaxBodyBytes))
		cfg.MaxBodyBytes = defaultGatewayConfig().MaxBodyBytes
	}

	if err := ValidateCronSchedule(cfg.SweepSchedule); err != nil {
		slog.Warn("invalid sweep schedule, using default",
			slog.String("error", err.Error()))
		cfg.SweepSchedule = defaultGatewayConfig().SweepSchedule
	}

	if !contains(cfg.SessionCookies, cfg.SessionCookie) {
		cfg.SessionCookies = append(cfg.SessionCookies, cfg.SessionCookie)
	}

	return cfg, nil
}

func defaultGatewayConfig() *GatewayConfig {
	return &GatewayConfig{
		ListenAddr:      ":8080",
		MetricsAddr:     ":9090",
		UpstreamURL:     "http://localhost:3000",
		PlatformDomains: []string{"microsites.app"},
		SessionCookie:   "session_token",
		SessionCookies:  []string{"session_token", "refresh_token"},
		TokenIssuer:     "microsite-platform",
		StoreBackend:    "memory",
		Policies:        ratelimit.DefaultPolicySet(),
		SweepSchedule:   "@every 5m",
		MaxBodyBytes:    10 << 20,
		ShutdownTimeout: 15 * time.Second,
	}
}

func applyFile(cfg *GatewayConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var file gatewayFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setIfNotEmpty(&cfg.ListenAddr, file.ListenAddr)
	setIfNotEmpty(&cfg.MetricsAddr, file.MetricsAddr)
	setIfNotEmpty(&cfg.UpstreamURL, file.UpstreamURL)
	setIfNotEmpty(&cfg.SessionCookie, file.SessionCookie)
	setIfNotEmpty(&cfg.TokenIssuer, file.TokenIssuer)
	setIfNotEmpty(&cfg.StoreBackend, file.StoreBackend)
	setIfNotEmpty(&cfg.RedisAddr, file.RedisAddr)
	setIfNotEmpty(&cfg.RedisPassword, file.RedisPassword)
	setIfNotEmpty(&cfg.SweepSchedule, file.SweepSchedule)
	if file.RedisDB != 0 {
		cfg.RedisDB = file.RedisDB
	}
	if file.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = file.MaxBodyBytes
	}
	if len(file.PlatformDomains) > 0 {
		cfg.PlatformDomains = file.PlatformDomains
	}
	if len(file.SessionCookies) > 0 {
		cfg.SessionCookies = file.SessionCookies
	}
	if len(file.TrustedProxies) > 0 {
		cfg.TrustedProxies = file.TrustedProxies
	}
	if file.ShutdownTimeout != "" {
		if d, err := time.ParseDuration(file.ShutdownTimeout); err == nil && d > 0 {
			cfg.ShutdownTimeout = d
		} else {
			slog.Warn("invalid shutdown_timeout in config file, using default",
				slog.String("value", file.ShutdownTimeout))
		}
	}

	applyClassFile(&cfg.Policies.Auth, "auth", file.RateLimit.Auth)
	applyClassFile(&cfg.Policies.Payment, "payment", file.RateLimit.Payment)
	applyClassFile(&cfg.Policies.API, "api", file.RateLimit.API)
	applyClassFile(&cfg.Policies.Public, "public", file.RateLimit.Public)

	return nil
}

func applyClassFile(p *ratelimit.Policy, name string, file classFile) {
	if file.MaxRequests > 0 {
		p.MaxRequests = file.MaxRequests
	}
	if file.Window != "" {
		d, err := time.ParseDuration(file.Window)
		if err != nil || ValidatePositiveDuration(d) != nil {
			slog.Warn("invalid rate limit window in config file, keeping previous value",
				slog.String("class", name),
				slog.String("value", file.Window))
			return
		}
		p.Window = d
	}
}

func applyEnv(cfg *GatewayConfig) {
	cfg.ListenAddr = GetEnvString("GATEWAY_LISTEN_ADDR", cfg.ListenAddr)
	cfg.MetricsAddr = GetEnvString("GATEWAY_METRICS_ADDR", cfg.MetricsAddr)
	cfg.UpstreamURL = GetEnvString("UPSTREAM_URL", cfg.UpstreamURL)
	cfg.PlatformDomains = GetEnvStringList("PLATFORM_DOMAINS", cfg.PlatformDomains)
	cfg.SessionCookie = GetEnvString("SESSION_COOKIE", cfg.SessionCookie)
	cfg.SessionCookies = GetEnvStringList("SESSION_COOKIES", cfg.SessionCookies)
	cfg.TokenIssuer = GetEnvString("TOKEN_ISSUER", cfg.TokenIssuer)
	cfg.StoreBackend = GetEnvString("RATELIMIT_STORE", cfg.StoreBackend)
	cfg.RedisAddr = GetEnvString("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = GetEnvString("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = GetEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.TrustedProxies = GetEnvStringList("TRUSTED_PROXIES", cfg.TrustedProxies)
	cfg.SweepSchedule = GetEnvString("RATELIMIT_SWEEP_SCHEDULE", cfg.SweepSchedule)
	cfg.MaxBodyBytes = int64(GetEnvInt("GATEWAY_MAX_BODY_BYTES", int(cfg.MaxBodyBytes)))
	cfg.ShutdownTimeout = GetEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	applyClassEnv(&cfg.Policies.Auth, "RATELIMIT_AUTH")
	applyClassEnv(&cfg.Policies.Payment, "RATELIMIT_PAYMENT")
	applyClassEnv(&cfg.Policies.API, "RATELIMIT_API")
	applyClassEnv(&cfg.Policies.Public, "RATELIMIT_PUBLIC")
}

func applyClassEnv(p *ratelimit.Policy, prefix string) {
	p.MaxRequests = GetEnvInt(prefix+"_LIMIT", p.MaxRequests)
	p.Window = GetEnvDuration(prefix+"_WINDOW", p.Window)
}

func setIfNotEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
