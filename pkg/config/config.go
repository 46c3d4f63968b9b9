package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/xyproto/env/v2"
)

const (
	DefaultAddr    = ":8080"
	DefaultMaxBody = 1 << 20
	DefaultSMTP    = 587
)

type Config struct {
	// Format is the default output format; empty lets the CLI choose.
	Format    string
	Addr      string
	JWTSecret string
	MaxBody   int64

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
}

// MailEnabled reports whether enough SMTP settings are present to send mail.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}

// Load reads the given .env files (".env" when none are named) and the
// process environment. Variables already set in the environment win over
// file values; missing files are skipped.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	file := map[string]string{}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		vals, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		for k, v := range vals {
			if _, ok := file[k]; !ok {
				file[k] = v
			}
		}
	}

	src := source{file: file}
	c := &Config{
		Format:    src.str("LEXSCAN_FORMAT", ""),
		Addr:      src.str("LEXSCAN_ADDR", DefaultAddr),
		JWTSecret: src.str("LEXSCAN_JWT_SECRET", ""),
		SMTPHost:  src.str("SMTP_HOST", ""),
		SMTPUser:  src.str("SMTP_USER", ""),
		SMTPPass:  src.str("SMTP_PASS", ""),
		MailFrom:  src.str("MAIL_FROM", ""),
	}
	maxBody, err := src.int("LEXSCAN_MAX_BODY", DefaultMaxBody)
	if err != nil {
		return nil, err
	}
	if maxBody <= 0 {
		return nil, fmt.Errorf("LEXSCAN_MAX_BODY must be positive, got %d", maxBody)
	}
	c.MaxBody = int64(maxBody)
	if c.SMTPPort, err = src.int("SMTP_PORT", DefaultSMTP); err != nil {
		return nil, err
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return nil, fmt.Errorf("SMTP_PORT must be in 1..65535, got %d", c.SMTPPort)
	}
	return c, nil
}

type source struct {
	file map[string]string
}

func (s source) str(name, def string) string {
	if env.Has(name) {
		return env.Str(name, def)
	}
	if v, ok := s.file[name]; ok {
		return v
	}
	return def
}

// int parses name the same way whether it comes from the environment or
// a .env file.
func (s source) int(name string, def int) (int, error) {
	v := s.str(name, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}
