package client

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithHTTPClient(t *testing.T) {
	custom := &http.Client{Timeout: 60 * time.Second}

	c, err := NewClient("http://api.example.com", WithHTTPClient(custom))
	require.NoError(t, err)
	assert.Same(t, custom, c.httpClient)
}

func TestWithAPIKey(t *testing.T) {
	c, err := NewClient("http://api.example.com", WithAPIKey("tok"))
	require.NoError(t, err)
	assert.Equal(t, "tok", c.apiKey)
}

func TestWithRetryMax(t *testing.T) {
	c, err := NewClient("http://api.example.com", WithRetryMax(5))
	require.NoError(t, err)
	assert.Equal(t, 5, c.retryMax)

	c, err = NewClient("http://api.example.com", WithRetryMax(-1))
	require.NoError(t, err)
	assert.Equal(t, 3, c.retryMax, "negative values keep the default")
}

func TestWithRetryWait(t *testing.T) {
	c, err := NewClient("http://api.example.com", WithRetryWait(time.Second, 10*time.Second))
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.retryWaitMin)
	assert.Equal(t, 10*time.Second, c.retryWaitMax)

	c, err = NewClient("http://api.example.com", WithRetryWait(10*time.Second, time.Second))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, c.retryWaitMin)
	assert.Equal(t, 5*time.Second, c.retryWaitMax, "max below min keeps the default max")
}

func TestWithUserAgent(t *testing.T) {
	c, err := NewClient("http://api.example.com", WithUserAgent("docket-cli/2.0"))
	require.NoError(t, err)
	assert.Equal(t, "docket-cli/2.0", c.userAgent)

	c, err = NewClient("http://api.example.com", WithUserAgent(""))
	require.NoError(t, err)
	assert.Contains(t, c.userAgent, "litidocket-go-sdk/")
}
