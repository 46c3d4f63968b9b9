package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "lexscan.env")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Format != "" || c.Addr != DefaultAddr || c.MaxBody != DefaultMaxBody || c.SMTPPort != DefaultSMTP {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.MailEnabled() {
		t.Fatal("mail enabled without SMTP settings")
	}
}

func TestLoadFile(t *testing.T) {
	p := writeEnv(t, `# scanner settings
LEXSCAN_FORMAT=json
LEXSCAN_ADDR=127.0.0.1:9000
LEXSCAN_JWT_SECRET="s3cret"
LEXSCAN_MAX_BODY=2048
SMTP_HOST=smtp.example.org
SMTP_PORT=2525
MAIL_FROM=lexscan@example.org
`)
	c, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"Format", c.Format, "json"},
		{"Addr", c.Addr, "127.0.0.1:9000"},
		{"JWTSecret", c.JWTSecret, "s3cret"},
		{"MaxBody", c.MaxBody, int64(2048)},
		{"SMTPHost", c.SMTPHost, "smtp.example.org"},
		{"SMTPPort", c.SMTPPort, 2525},
		{"MailFrom", c.MailFrom, "lexscan@example.org"},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s wrong. expected=%v, got=%v", tt.name, tt.expected, tt.got)
		}
	}
	if !c.MailEnabled() {
		t.Error("mail should be enabled")
	}
}

func TestLoadFirstFileWins(t *testing.T) {
	first := writeEnv(t, "LEXSCAN_FORMAT=table\n")
	second := writeEnv(t, "LEXSCAN_FORMAT=json\nLEXSCAN_ADDR=:7000\n")
	c, err := Load(first, second)
	if err != nil {
		t.Fatal(err)
	}
	if c.Format != "table" || c.Addr != ":7000" {
		t.Fatalf("unexpected merge result: %+v", c)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	for _, content := range []string{
		"LEXSCAN_MAX_BODY=lots\n",
		"LEXSCAN_MAX_BODY=0\n",
		"SMTP_PORT=x\n",
		"SMTP_PORT=-5\n",
		"SMTP_PORT=70000\n",
	} {
		if _, err := Load(writeEnv(t, content)); err == nil {
			t.Errorf("expected error for %q", content)
		}
	}
}

func TestLoadRejectsBadNumbersFromEnvironment(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"LEXSCAN_MAX_BODY", "abc"},
		{"LEXSCAN_MAX_BODY", "-1"},
		{"SMTP_PORT", "-5"},
		{"SMTP_PORT", "65536"},
		{"SMTP_PORT", "twenty-five"},
	}
	missing := filepath.Join(t.TempDir(), "missing.env")
	for _, tt := range tests {
		t.Run(tt.name+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.name, tt.value)
			if c, err := Load(missing); err == nil {
				t.Fatalf("expected error, got %+v", c)
			}
		})
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("SMTP_PORT", "2526")
	c, err := Load(writeEnv(t, "SMTP_PORT=2525\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.SMTPPort != 2526 {
		t.Fatalf("SMTPPort wrong. expected=2526, got=%d", c.SMTPPort)
	}
}
