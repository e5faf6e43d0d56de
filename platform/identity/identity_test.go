package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNonBase64IsOpaque(t *testing.T) {
	id, err := Parse("not-valid-base64!!")
	require.NoError(t, err)
	assert.True(t, id.Opaque)
	assert.Empty(t, id.TenantID)
}

func TestParseBase64NonPKCS12IsOpaque(t *testing.T) {
	// "hello world" base64-encoded decodes fine but isn't a PFX container.
	id, err := Parse("aGVsbG8gd29ybGQ=")
	require.NoError(t, err)
	assert.True(t, id.Opaque)
}

func TestParseEmptyStringIsOpaque(t *testing.T) {
	id, err := Parse("")
	require.NoError(t, err)
	assert.True(t, id.Opaque)
}

func TestCredentialAuthHeaderFormatsBearer(t *testing.T) {
	c := NewCredential("api-key-123")
	name, value := c.AuthHeader()
	assert.Equal(t, "Authorization", name)
	assert.Equal(t, "Bearer api-key-123", value)
}
