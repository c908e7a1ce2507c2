package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	MySQLDSN        string
	RedisURL        string
	JWTSecret       string
	Port            string
	AIKey           string
	AIEndpoint      string
	ChainEndpoint   string
	WalletVerifyURL string
	SweepInterval   int // seconds between deadline sweeps
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	si, _ := strconv.Atoi(getenv("SWEEP_INTERVAL", "60"))
	return Config{
		MySQLDSN:        getenv("MYSQL_DSN", "civicchain:civicchain@tcp(127.0.0.1:3306)/civicchain?parseTime=true"),
		RedisURL:        getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		JWTSecret:       getenv("JWT_SECRET", ""),
		Port:            getenv("PORT", "8080"),
		AIKey:           os.Getenv("AI_API_KEY"),
		AIEndpoint:      getenv("AI_ENDPOINT", "https://api.anthropic.com/v1/messages"),
		ChainEndpoint:   os.Getenv("CHAIN_ENDPOINT"),
		WalletVerifyURL: os.Getenv("WALLET_VERIFY_URL"),
		SweepInterval:   si,
	}
}
