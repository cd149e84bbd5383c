package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"taskpro/internal/service"
)

var _ service.Service = (*Store)(nil)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SignUp creates a user, its profile row and a first session.
func (s *Store) SignUp(ctx context.Context, email, password string, meta service.Metadata) (service.Identity, error) {
	email = normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return service.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return service.Identity{}, err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	now := s.now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		id, email, string(hash), now.UnixNano())
	if err != nil {
		if isUniqueViolation(err) {
			return service.Identity{}, service.ErrEmailTaken
		}
		return service.Identity{}, fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (id, full_name, email, created_at) VALUES (?, ?, ?, ?)`,
		id, nullString(strings.TrimSpace(meta.FullName)), email, now.UnixNano())
	if err != nil {
		return service.Identity{}, fmt.Errorf("insert profile: %w", err)
	}

	tok, err := s.issue(ctx, tx, id)
	if err != nil {
		return service.Identity{}, err
	}
	if err := tx.Commit(); err != nil {
		return service.Identity{}, err
	}
	return service.Identity{UserID: id, Email: email, Token: tok}, nil
}

// SignIn checks the password and opens a new session.
func (s *Store) SignIn(ctx context.Context, email, password string) (service.Identity, error) {
	email = normalizeEmail(email)
	var id, hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = ?`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return service.Identity{}, service.ErrInvalidCredentials
	}
	if err != nil {
		return service.Identity{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return service.Identity{}, service.ErrInvalidCredentials
	}

	tok, err := s.issue(ctx, s.db, id)
	if err != nil {
		return service.Identity{}, err
	}
	return service.Identity{UserID: id, Email: email, Token: tok}, nil
}

// SignOut revokes the session the token belongs to. Unknown tokens are
// not an error.
func (s *Store) SignOut(ctx context.Context, tok *oauth2.Token) error {
	if tok == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE access_token = ? OR refresh_token = ?`,
		tok.AccessToken, tok.RefreshToken)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CurrentUser resolves a token to its user. An expired or unknown access
// token is exchanged through its refresh token when one is present.
func (s *Store) CurrentUser(ctx context.Context, tok *oauth2.Token) (service.Identity, error) {
	if tok == nil || tok.AccessToken == "" {
		return service.Identity{}, service.ErrNotAuthenticated
	}

	ident, expires, err := s.lookup(ctx, "access_token", tok.AccessToken)
	switch {
	case err == nil && s.now().Before(expires):
		ident.Token = &oauth2.Token{
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       expires,
		}
		return ident, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return service.Identity{}, err
	}

	if tok.RefreshToken == "" {
		return service.Identity{}, service.ErrNotAuthenticated
	}
	return s.Refresh(ctx, tok.RefreshToken)
}

// Refresh swaps the access token of the session owning refreshToken.
// The refresh token itself stays valid until sign-out.
func (s *Store) Refresh(ctx context.Context, refreshToken string) (service.Identity, error) {
	if refreshToken == "" {
		return service.Identity{}, service.ErrNotAuthenticated
	}
	ident, _, err := s.lookup(ctx, "refresh_token", refreshToken)
	if errors.Is(err, sql.ErrNoRows) {
		return service.Identity{}, service.ErrNotAuthenticated
	}
	if err != nil {
		return service.Identity{}, err
	}

	access := uuid.NewString()
	expires := s.now().Add(s.ttl).UTC()
	_, err = s.db.ExecContext(ctx,
		`UPDATE sessions SET access_token = ?, expires_at = ? WHERE refresh_token = ?`,
		access, expires.UnixNano(), refreshToken)
	if err != nil {
		return service.Identity{}, fmt.Errorf("refresh session: %w", err)
	}
	ident.Token = &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		Expiry:       expires,
	}
	return ident, nil
}

func (s *Store) issue(ctx context.Context, db execer, userID string) (*oauth2.Token, error) {
	tok := &oauth2.Token{
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		TokenType:    "Bearer",
		Expiry:       s.now().Add(s.ttl).UTC(),
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO sessions (access_token, refresh_token, user_id, expires_at) VALUES (?, ?, ?, ?)`,
		tok.AccessToken, tok.RefreshToken, userID, tok.Expiry.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return tok, nil
}

// lookup finds a session by one of its token columns.
func (s *Store) lookup(ctx context.Context, column, value string) (service.Identity, time.Time, error) {
	var (
		ident   service.Identity
		expires int64
	)
	query := `SELECT s.user_id, u.email, s.expires_at FROM sessions s
		JOIN users u ON u.id = s.user_id WHERE s.` + column + ` = ?`
	err := s.db.QueryRowContext(ctx, query, value).Scan(&ident.UserID, &ident.Email, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ident, time.Time{}, err
		}
		return ident, time.Time{}, fmt.Errorf("lookup session: %w", err)
	}
	return ident, time.Unix(0, expires).UTC(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
