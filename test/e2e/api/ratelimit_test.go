package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/threatcombat/threatcombat/pkg/apisdk"
)

// These tests run against the production rate limit profiles, so they use
// the default-limits container setup.

func TestStrictRateLimitOnRegistration(t *testing.T) {
	baseURL, cleanup := setupContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)

	// The strict profile allows 5 requests per minute per IP. Burn through
	// the budget with distinct registrations, then expect a 429.
	limited := false
	for i := 0; i < 10; i++ {
		_, err := client.Register(t.Context(), apisdk.RegisterRequest{
			Name:       fmt.Sprintf("Throwaway %d", i),
			Email:      fmt.Sprintf("throwaway%d@ratelimit.example", i),
			Password:   testPassword,
			University: "Ratelimit University",
		})
		if err == nil {
			continue
		}

		var apiErr *apisdk.APIError
		require.ErrorAs(t, err, &apiErr)
		if apiErr.StatusCode == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	require.True(t, limited, "rapid registrations should hit the strict limit")
}

func TestPublicReadsStayAvailable(t *testing.T) {
	baseURL, cleanup := setupContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := apisdk.NewSDKClient(baseURL)

	// The public profile is generous; a burst of catalog reads should pass.
	for i := 0; i < 50; i++ {
		_, err := client.ListChapters(t.Context(), apisdk.ChapterListOptions{})
		require.NoError(t, err, "read %d should not be limited", i)
	}
}
