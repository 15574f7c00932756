package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string `yaml:"port"`
	DBDSN    string `yaml:"db_dsn"`
	MediaDir string `yaml:"media_dir"`
	LogFile  string `yaml:"log_file"`

	// PublicBaseURL prefixes the payment success/cancel return URLs.
	PublicBaseURL string `yaml:"public_base_url"`

	PaymentBaseURL       string        `yaml:"payment_base_url"` // empty selects the local stub processor
	PaymentAPIKey        string        `yaml:"payment_api_key"`
	PaymentTimeout       time.Duration `yaml:"-"`
	PaymentCurrency      string        `yaml:"payment_currency"`
	PaymentMethod        string        `yaml:"payment_method"`
	PaymentWebhookSecret string        `yaml:"payment_webhook_secret"`

	KafkaBrokers string `yaml:"kafka_brokers"`

	// PendingOrderTTL > 0 enables the stale pending order sweep.
	PendingOrderTTL time.Duration `yaml:"-"`
	SweepInterval   time.Duration `yaml:"-"`

	ReviewRequireShipped bool `yaml:"review_require_shipped"`
}

// fileConfig carries durations as strings so YAML can say "30s".
type fileConfig struct {
	Config          `yaml:",inline"`
	PaymentTimeout  string `yaml:"payment_timeout"`
	PendingOrderTTL string `yaml:"pending_order_ttl"`
	SweepInterval   string `yaml:"sweep_interval"`
}

func Defaults() Config {
	return Config{
		Port:            "8080",
		DBDSN:           "storefront.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		MediaDir:        "./web/media",
		LogFile:         "./storefront.log",
		PublicBaseURL:   "http://localhost:8080",
		PaymentTimeout:  10 * time.Second,
		PaymentCurrency: "myr",
		PaymentMethod:   "stripe",
		SweepInterval:   10 * time.Minute,
	}
}

func Load() Config {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			log.Printf("[config] could not read %s: %v", path, err)
		}
	}

	str(&cfg.Port, "PORT")
	str(&cfg.DBDSN, "DB_DSN")
	str(&cfg.MediaDir, "MEDIA_DIR")
	str(&cfg.LogFile, "LOG_FILE")
	str(&cfg.PublicBaseURL, "PUBLIC_BASE_URL")
	str(&cfg.PaymentBaseURL, "PAYMENT_BASE_URL")
	str(&cfg.PaymentAPIKey, "PAYMENT_API_KEY")
	dur(&cfg.PaymentTimeout, "PAYMENT_TIMEOUT")
	str(&cfg.PaymentCurrency, "PAYMENT_CURRENCY")
	str(&cfg.PaymentMethod, "PAYMENT_METHOD")
	str(&cfg.PaymentWebhookSecret, "PAYMENT_WEBHOOK_SECRET")
	str(&cfg.KafkaBrokers, "KAFKA_BROKERS")
	dur(&cfg.PendingOrderTTL, "PENDING_ORDER_TTL")
	dur(&cfg.SweepInterval, "SWEEP_INTERVAL")
	if v := os.Getenv("REVIEW_REQUIRE_SHIPPED"); v != "" {
		cfg.ReviewRequireShipped, _ = strconv.ParseBool(v)
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	cfg.PaymentBaseURL = strings.TrimRight(cfg.PaymentBaseURL, "/")

	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s PAYMENT_BASE_URL=%q KAFKA_BROKERS=%q PENDING_ORDER_TTL=%s",
		cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.LogFile, cfg.PaymentBaseURL, cfg.KafkaBrokers, cfg.PendingOrderTTL)
	return cfg
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fc := fileConfig{Config: *cfg}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return err
	}
	*cfg = fc.Config
	for _, d := range []struct {
		s   string
		dst *time.Duration
	}{
		{fc.PaymentTimeout, &cfg.PaymentTimeout},
		{fc.PendingOrderTTL, &cfg.PendingOrderTTL},
		{fc.SweepInterval, &cfg.SweepInterval},
	} {
		if d.s == "" {
			continue
		}
		v, err := time.ParseDuration(d.s)
		if err != nil {
			return err
		}
		*d.dst = v
	}
	return nil
}

func str(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func dur(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	} else {
		log.Printf("[config] ignoring %s=%q: %v", key, v, err)
	}
}
