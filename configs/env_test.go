package config

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnvConfig struct {
	Port    int     `env:"KICKLINK_TEST_PORT" envDefault:"123"`
	BaseURL url.URL `env:"KICKLINK_TEST_BASE_URL,required"`
}

func TestParseEnvDefaults(t *testing.T) {
	t.Setenv("KICKLINK_TEST_BASE_URL", "https://kicklink.app")

	var cfg testEnvConfig
	require.NoError(t, ParseEnv(&cfg))
	assert.Equal(t, 123, cfg.Port)
	assert.Equal(t, "kicklink.app", cfg.BaseURL.Host)
}

func TestParseEnvMissingRequired(t *testing.T) {
	var cfg testEnvConfig
	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidateBaseURL(t *testing.T) {
	ok, _ := url.Parse("https://kicklink.app")
	assert.NoError(t, ValidateBaseURL("CLIENT_URL", *ok))

	noScheme, _ := url.Parse("kicklink.app/games")
	assert.Error(t, ValidateBaseURL("CLIENT_URL", *noScheme))

	ftp, _ := url.Parse("ftp://kicklink.app")
	assert.Error(t, ValidateBaseURL("CLIENT_URL", *ftp))
}
