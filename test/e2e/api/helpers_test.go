package api_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/threatcombat/threatcombat/pkg/apisdk"
)

/*
 * Common constants and helper functions for membership API end-to-end tests.
 * This includes container setup, account seeding, and assertions.
 */

const (
	testImageName = "threatcombat-api-test:latest"

	adminEmail    = "admin@threatcombat.org"
	adminPassword = "Admin123!admin"

	// Default password for accounts the tests create
	testPassword = "Str0ng!passphrase"
)

// TestMain builds the Docker image once before all tests and cleans it up
// after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building membership API Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up membership API Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/api/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// baseEnv is the container environment shared by every setup variant.
// Each container gets its own database file, so tests are isolated.
func baseEnv() map[string]string {
	return map[string]string{
		"JWT_SECRET":    "e2e-test-secret-0123456789abcdef",
		"DATABASE_FILE": "threatcombat-test.db",
		"PEPPER_FILE":   "pepper",
		"TOKEN_IN_BODY": "true",
		"ENV":           "test",
		"LOG_LEVEL":     "info",
		"LOG_FORMAT":    "json",

		"BOOTSTRAP_ADMIN_EMAIL":    adminEmail,
		"BOOTSTRAP_ADMIN_PASSWORD": adminPassword,
	}
}

// setupContainer starts the API with relaxed rate limits so tests can make
// many rapid requests without tripping the production profiles.
func setupContainer(t *testing.T) (string, func()) {
	t.Helper()

	env := baseEnv()
	env["RATELIMIT_STRICT_REQUESTS"] = "1000"
	env["RATELIMIT_STRICT_WINDOW_SEC"] = "60"
	env["RATELIMIT_STRICT_BURST"] = "1000"
	env["RATELIMIT_MODERATE_REQUESTS"] = "1000"
	env["RATELIMIT_MODERATE_BURST"] = "1000"
	env["RATELIMIT_PUBLIC_REQUESTS"] = "1000"
	env["RATELIMIT_PUBLIC_BURST"] = "1000"

	return startContainer(t, env)
}

// setupContainerWithDefaultRateLimits starts the API with production rate
// limits, specifically for testing that rate limiting works.
func setupContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, baseEnv())
}

func startContainer(t *testing.T, env map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// loginAdmin authenticates the bootstrap super admin.
func loginAdmin(t *testing.T, client *apisdk.SDKClient) *apisdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err, "admin login should succeed")
	require.NotEmpty(t, session.Token(), "admin session should carry a token")

	return session
}

// createChapter creates a chapter as the given super admin session.
func createChapter(t *testing.T, admin *apisdk.Session, name, university string) *apisdk.Chapter {
	t.Helper()

	chapter, err := admin.CreateChapter(t.Context(), apisdk.ChapterRequest{
		Name:       name,
		University: university,
	})
	require.NoError(t, err, "chapter creation should succeed")
	require.NotEmpty(t, chapter.ID)

	return chapter
}

// createActiveUser creates an active, verified user via the admin create
// endpoint and returns the record.
func createActiveUser(t *testing.T, admin *apisdk.Session, name, email, role, chapterID string) *apisdk.User {
	t.Helper()

	user, err := admin.CreateUser(t.Context(), apisdk.CreateUserRequest{
		Name:      name,
		Email:     email,
		Password:  testPassword,
		Role:      role,
		ChapterID: chapterID,
	})
	require.NoError(t, err, "user creation should succeed")
	require.Equal(t, apisdk.StatusActive, user.MembershipStatus)

	return user
}

// loginAs authenticates a user created with createActiveUser.
func loginAs(t *testing.T, client *apisdk.SDKClient, email string) *apisdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), email, testPassword)
	require.NoError(t, err, "login should succeed for %s", email)

	return session
}

// requireAPIStatus asserts that err is an *APIError with the given HTTP status.
func requireAPIStatus(t *testing.T, err error, status int, msgAndArgs ...any) {
	t.Helper()

	require.Error(t, err, msgAndArgs...)
	var apiErr *apisdk.APIError
	require.ErrorAs(t, err, &apiErr, "error should be an *apisdk.APIError, got: %v", err)
	require.Equal(t, status, apiErr.StatusCode, "unexpected HTTP status, message: %s", apiErr.Message)
}
