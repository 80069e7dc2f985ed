package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BOT_TOKEN           string
	ADMIN_CHAT_IDS      []int64
	HTTP_ADDR           string
	DATA_DIR            string
	LOG_LEVEL           string
	JWT_SECRET          string
	ADMIN_PASSWORD_HASH string
	CART_TTL            time.Duration
	DATABASE_URL        string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		BOT_TOKEN:           os.Getenv("BOT_TOKEN"),
		HTTP_ADDR:           getenv("HTTP_ADDR", ":8080"),
		DATA_DIR:            getenv("DATA_DIR", "data"),
		LOG_LEVEL:           getenv("LOG_LEVEL", "info"),
		JWT_SECRET:          os.Getenv("JWT_SECRET"),
		ADMIN_PASSWORD_HASH: os.Getenv("ADMIN_PASSWORD_HASH"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
	}

	ids, err := parseChatIDs(os.Getenv("ADMIN_CHAT_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.ADMIN_CHAT_IDS = ids

	cfg.CART_TTL = time.Hour
	if raw := os.Getenv("CART_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse CART_TTL: %w", err)
		}
		cfg.CART_TTL = d
	}

	return cfg, nil
}

// AdminAuthEnabled reports whether the admin API requires a login token.
// With no secret and no password hash configured the API stays open.
func (c *Config) AdminAuthEnabled() bool {
	return c.JWT_SECRET != "" && c.ADMIN_PASSWORD_HASH != ""
}

func (c *Config) IsAdminChat(id int64) bool {
	for _, a := range c.ADMIN_CHAT_IDS {
		if a == id {
			return true
		}
	}
	return false
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseChatIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse ADMIN_CHAT_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
