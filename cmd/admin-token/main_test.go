package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dss-api/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueProducesAcceptedToken(t *testing.T) {
	var out strings.Builder
	require.NoError(t, issue(&out, "jwt-secret", "ops", time.Minute))
	tok := strings.TrimSpace(out.String())
	require.NotEmpty(t, tok)

	r := httptest.NewRequest(http.MethodGet, "/admin/heartbeat", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	assert.True(t, auth.New("", "jwt-secret").Authorized(r))
	assert.False(t, auth.New("", "other-secret").Authorized(r))
}

func TestIssueRejectsBadInput(t *testing.T) {
	var out strings.Builder
	assert.Error(t, issue(&out, "", "ops", time.Minute), "no secret configured")
	assert.Error(t, issue(&out, "jwt-secret", "ops", 0))
	assert.Empty(t, out.String())
}
