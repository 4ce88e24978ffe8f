package httpx

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(20 * time.Second)

	assert.Equal(t, 20*time.Second, c.Timeout)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 20*time.Second, tr.ResponseHeaderTimeout)
	assert.Equal(t, 4, tr.MaxIdleConnsPerHost)
}
