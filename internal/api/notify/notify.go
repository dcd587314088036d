// Package notify delivers transactional email to members. Delivery is
// best-effort: callers log failures and carry on, a down mail server must
// never fail the request that triggered the message.
package notify

import (
	"context"

	"github.com/threatcombat/threatcombat/internal/api/domain"
)

type Notifier interface {
	// VerificationEmail sends the email-verification link carrying the
	// opaque token.
	VerificationEmail(ctx context.Context, to domain.User, token string) error

	// PasswordResetEmail sends the password-reset link carrying the
	// opaque token.
	PasswordResetEmail(ctx context.Context, to domain.User, token string) error

	// RoleChanged tells a member their role was changed by an admin.
	RoleChanged(ctx context.Context, to domain.User, previous domain.Role) error

	// WelcomeEmail greets a freshly registered member.
	WelcomeEmail(ctx context.Context, to domain.User) error
}
