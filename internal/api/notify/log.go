package notify

import (
	"context"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/pkg/slogx"
)

// LogNotifier writes would-be emails to the structured log instead of
// sending them. Used in development and tests where no relay exists.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) VerificationEmail(ctx context.Context, to domain.User, token string) error {
	slogx.FromContext(ctx).Info("verification email",
		"to", to.Email,
		"token", token,
	)
	return nil
}

func (n *LogNotifier) PasswordResetEmail(ctx context.Context, to domain.User, token string) error {
	slogx.FromContext(ctx).Info("password reset email",
		"to", to.Email,
		"token", token,
	)
	return nil
}

func (n *LogNotifier) RoleChanged(ctx context.Context, to domain.User, previous domain.Role) error {
	slogx.FromContext(ctx).Info("role changed email",
		"to", to.Email,
		"previous", previous,
		"role", to.Role,
	)
	return nil
}

func (n *LogNotifier) WelcomeEmail(ctx context.Context, to domain.User) error {
	slogx.FromContext(ctx).Info("welcome email", "to", to.Email)
	return nil
}
