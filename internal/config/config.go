package config

import (
	"os"
	"time"
)

// Config holds process configuration loaded from the environment. The
// RSA keypair paths point at PEM files supplied out-of-band; a server
// that cannot load them must not start.
type Config struct {
	Port           string
	Env            string
	DatabaseDSN    string
	PrivateKeyPath string
	PublicKeyPath  string
	TokenAudience  string
	TokenTTL       time.Duration
}

// Load reads configuration from environment variables with development
// defaults.
func Load() Config {
	return Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/apimock?parseTime=true"),
		PrivateKeyPath: getEnv("RSA_PRIVATE_KEY_PATH", "rsa-private.pem"),
		PublicKeyPath:  getEnv("RSA_PUBLIC_KEY_PATH", "rsa-public.pem"),
		TokenAudience:  getEnv("TOKEN_AUDIENCE", "apimock"),
		TokenTTL:       getDuration("TOKEN_TTL", 7*24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
