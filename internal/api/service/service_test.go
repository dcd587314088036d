package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/notify"
	"github.com/threatcombat/threatcombat/internal/api/store"
	"github.com/threatcombat/threatcombat/internal/api/store/drivers/sqlite"
	"github.com/threatcombat/threatcombat/pkg/cryptox"
	"github.com/threatcombat/threatcombat/pkg/idx"
	"github.com/threatcombat/threatcombat/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "pepper")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

const testIssuer = "threatcombat-test"

type testEnv struct {
	store    *sqlite.Store
	audit    *AuditService
	auth     *AuthService
	authz    *AuthzService
	users    *UserService
	chapters *ChapterService
	catalog  *CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	audit := NewAuditService(st, logger, DefaultLockoutThreshold, DefaultLockoutWindow)
	audit.Start()
	t.Cleanup(audit.Stop)

	signer := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), testIssuer)
	notifier := notify.NewLogNotifier()

	return &testEnv{
		store:    st,
		audit:    audit,
		auth:     &AuthService{Store: st, Audit: audit, Notifier: notifier, Signer: signer, Logger: logger, Issuer: testIssuer},
		authz:    &AuthzService{Store: st, Audit: audit, Notifier: notifier, Logger: logger},
		users:    &UserService{Store: st, Audit: audit, Notifier: notifier, Logger: logger},
		chapters: &ChapterService{Store: st, Audit: audit, Logger: logger},
		catalog:  &CatalogService{Store: st, Audit: audit, Logger: logger},
	}
}

// flush waits for queued audit writes so assertions see them.
func (e *testEnv) flush(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.audit.Flush(ctx))
}

func (e *testEnv) newChapter(t *testing.T, name, university string) domain.Chapter {
	t.Helper()

	now := time.Now()
	c := domain.Chapter{
		ID:         idx.New().String(),
		Name:       name,
		University: university,
		Status:     domain.ChapterActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, e.store.Chapters().Create(context.Background(), c))
	return c
}

type userOpts struct {
	password   string
	status     domain.MembershipStatus
	unverified bool
}

func (e *testEnv) newUser(t *testing.T, email string, role domain.Role, chapterID string, opts userOpts) domain.User {
	t.Helper()

	if opts.password == "" {
		opts.password = "correct horse battery"
	}
	if opts.status == "" {
		opts.status = domain.MembershipActive
	}

	hash, err := cryptox.HashPassword(opts.password)
	require.NoError(t, err)

	now := time.Now()
	u := domain.User{
		ID:               idx.New().String(),
		Name:             "Test User",
		Email:            email,
		PasswordHash:     hash,
		Role:             role,
		ChapterID:        chapterID,
		MembershipStatus: opts.status,
		EmailVerified:    !opts.unverified,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return u
}

func (e *testEnv) auditEntries(t *testing.T, f store.AuditFilter) []domain.AuditEntry {
	t.Helper()

	e.flush(t)
	entries, err := e.store.AuditLogs().List(context.Background(), f)
	require.NoError(t, err)
	return entries
}

var testMeta = RequestMeta{
	IP:        "203.0.113.7",
	UserAgent: "go-test",
	Method:    "POST",
	URL:       "/api/test",
}
