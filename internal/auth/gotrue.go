package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// NewGoTrueClient creates a client for the auth service of a Supabase project.
func NewGoTrueClient(projectURL, apiKey string) gotrue.Client {
	return gotrue.New("", apiKey).WithCustomGoTrueURL(strings.TrimRight(projectURL, "/") + "/auth/v1")
}

// GoTrueVerifier verifies tokens by asking the auth service for their user.
type GoTrueVerifier struct {
	client gotrue.Client
}

// NewGoTrueVerifier creates a verifier backed by client.
func NewGoTrueVerifier(client gotrue.Client) *GoTrueVerifier {
	return &GoTrueVerifier{client: client}
}

// Verify implements Verifier.
func (v *GoTrueVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	user, err := v.client.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if user.ID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: user.ID, Email: user.Email}, nil
}

// Directory reads and deletes accounts through the auth admin API. The
// client must carry the service role key.
type Directory struct {
	client gotrue.Client
}

// NewDirectory creates a Directory using a service-role client.
func NewDirectory(client gotrue.Client) *Directory {
	return &Directory{client: client}
}

// Emails returns the email addresses of the given accounts. The admin list
// endpoint only serves its first page, so each account is fetched on its
// own. Accounts that cannot be read are left out; an error is returned only
// when none could be.
func (d *Directory) Emails(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	emails := make(map[uuid.UUID]string, len(ids))
	var firstErr error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return emails, err
		}
		resp, err := d.client.AdminGetUser(types.AdminGetUserRequest{UserID: id})
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("getting user %s: %w", id, err)
			}
			continue
		}
		emails[id] = resp.Email
	}
	if len(emails) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return emails, nil
}

// DeleteUser removes an account from the auth service.
func (d *Directory) DeleteUser(_ context.Context, userID uuid.UUID) error {
	if err := d.client.AdminDeleteUser(types.AdminDeleteUserRequest{UserID: userID}); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
