package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiansai/agent-sdk-go/sdkerr"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		envServerURL, envAPIKey, envCertificate, envTemporalURL, envTemporalNS,
		envTemporalCert, envTemporalKey, envConsoleLog, envServerLog, envAPILogLegacy,
		envRunIntegTests, envUseTestData,
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvRequiresAPIKeyOrCertificate(t *testing.T) {
	clearEnv(t)
	_, err := FromEnv()
	require.Error(t, err)
	var sdkErr *sdkerr.Error
	require.ErrorAs(t, err, &sdkErr)
	assert.Equal(t, sdkerr.Configuration, sdkErr.Kind)
}

func TestFromEnvAcceptsAPIKeyAlone(t *testing.T) {
	clearEnv(t)
	t.Setenv(envAPIKey, "secret-key")
	o, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "secret-key", o.APIKey)
	assert.Empty(t, o.AgentCertificate)
}

func TestFromEnvAcceptsCertificateAlone(t *testing.T) {
	clearEnv(t)
	t.Setenv(envCertificate, "base64cert")
	o, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "base64cert", o.AgentCertificate)
}

func TestFromEnvRejectsMalformedServerURL(t *testing.T) {
	clearEnv(t)
	t.Setenv(envAPIKey, "k")
	t.Setenv(envServerURL, "://not-a-url")
	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvServerLogFallsBackToLegacyAPILogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv(envAPIKey, "k")
	t.Setenv(envAPILogLegacy, "debug")
	o, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "debug", o.ServerLogLevel)
}

func TestFromEnvServerLogPrefersExplicitOverLegacy(t *testing.T) {
	clearEnv(t)
	t.Setenv(envAPIKey, "k")
	t.Setenv(envServerLog, "warn")
	t.Setenv(envAPILogLegacy, "debug")
	o, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "warn", o.ServerLogLevel)
}

func TestFromEnvBoolFlagsAcceptTruthySpellings(t *testing.T) {
	clearEnv(t)
	t.Setenv(envAPIKey, "k")
	t.Setenv(envRunIntegTests, "YES")
	t.Setenv(envUseTestData, "1")
	o, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, o.RunIntegrationTests)
	assert.True(t, o.UseTestData)
}

func TestValidateServerURLAcceptsSchemeHost(t *testing.T) {
	assert.NoError(t, ValidateServerURL("https://example.com:443"))
}

func TestValidateServerURLAcceptsHostPort(t *testing.T) {
	assert.NoError(t, ValidateServerURL("localhost:7233"))
}

func TestValidateServerURLRejectsMissingPort(t *testing.T) {
	assert.Error(t, ValidateServerURL("localhost"))
}

func TestValidateServerURLRejectsSchemeWithoutHost(t *testing.T) {
	assert.Error(t, ValidateServerURL("https://"))
}
