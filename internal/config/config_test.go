package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/var/lib/baraza"},
		Mail:   MailConfig{Transport: MailTransportLog, From: "news@example.com"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Environments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"PRODUCTION", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_MailTransport(t *testing.T) {
	cfg := validConfig()
	cfg.Mail.Transport = "smtp"
	assert.Error(t, cfg.Validate())

	cfg.Mail.Transport = MailTransportSES
	cfg.Mail.AWSRegion = ""
	assert.Error(t, cfg.Validate())

	cfg.Mail.AWSRegion = "eu-west-1"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FlagsBeatEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("ACCESS_TOKEN_DURATION", "1h")

	cfg, err := Load([]string{
		"-port", "9100",
		"-data-path", dir,
		"-env-file", filepath.Join(dir, "missing.env"),
	})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, dir, cfg.Data.BasePath)
	assert.Equal(t, filepath.Join(dir, "baraza.db"), cfg.Data.DatabasePath())
	assert.Equal(t, "Baraza newsletter", cfg.Mail.NewsletterSubject)
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	_, err := Load([]string{
		"-data-path", dir,
		"-read-timeout", "soon",
		"-env-file", filepath.Join(dir, "missing.env"),
	})
	assert.Error(t, err)
}

func TestExpandPath_Tilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/baraza", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "baraza"), got)
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nBARAZA_TEST_A=file\nBARAZA_TEST_B=\"quoted\"\n\n"), 0o600))

	t.Setenv("BARAZA_TEST_A", "env")
	t.Setenv("BARAZA_TEST_B", "")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "env", os.Getenv("BARAZA_TEST_A"))
	assert.Equal(t, "quoted", os.Getenv("BARAZA_TEST_B"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT_A_PAIR\n"), 0o600))
	assert.Error(t, loadEnvFile(path))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitList(" https://a.example, ,https://b.example"))
	assert.Nil(t, splitList(""))
}
