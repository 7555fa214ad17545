package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		p, err := GeneratePassword(12)
		require.NoError(t, err)
		assert.Len(t, p, 12)
		assert.NotContains(t, p, "0")
		assert.NotContains(t, p, "O")
		assert.NotContains(t, p, "l")
		seen[p] = true
	}
	assert.Greater(t, len(seen), 45)

	_, err := GeneratePassword(0)
	assert.Error(t, err)
}

func TestGenerateJWTSecrets(t *testing.T) {
	a, r, err := GenerateJWTSecrets()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, r)
}

func TestClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.7"}, "203.0.113.7"},
		{"private real ip falls through", map[string]string{"X-Real-IP": "10.0.0.5", "X-Forwarded-For": "198.51.100.2"}, "198.51.100.2"},
		{"first public hop", map[string]string{"X-Forwarded-For": "192.168.1.4, 198.51.100.9"}, "198.51.100.9"},
		{"all private", map[string]string{"X-Forwarded-For": "192.168.1.4, 10.1.1.1"}, "192.168.1.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(c))
		})
	}
}

func TestParseClient(t *testing.T) {
	info := ParseClient("")
	assert.Equal(t, "unknown", info.DeviceType)

	info = ParseClient("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.Equal(t, "desktop", info.DeviceType)
	assert.Equal(t, "Chrome", info.Browser)
	assert.False(t, info.IsBot)
}
