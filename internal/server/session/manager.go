package session

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mdouchement/todo/internal/database"
	"github.com/mdouchement/todo/internal/model"
	"github.com/mdouchement/todo/internal/sferror"
	"github.com/o1egl/paseto/v2"
	"github.com/pkg/errors"
)

type (
	// A Manager manages sessions.
	Manager interface {
		// ExpirationTime returns the lifetime of a new session.
		ExpirationTime() time.Duration
		// Generate creates and persists a new session for the given user.
		Generate(user *model.User, userAgent string) (*model.Session, error)
		// Token returns the encrypted token of the session.
		Token(session *model.Session) (string, error)
		// Validate validates a token and returns its session and user.
		Validate(token string) (*model.Session, *model.User, error)
		// Revoke deletes the given session.
		Revoke(session *model.Session) error
	}

	manager struct {
		db      database.Client
		v2      *paseto.V2
		secret  []byte
		ttl     time.Duration
		nowFunc func() time.Time
	}
)

// NewManager returns a new manager.
// The secret must be 32 bytes long.
func NewManager(db database.Client, secret []byte, ttl time.Duration) Manager {
	return &manager{
		db:      db,
		v2:      paseto.NewV2(),
		secret:  secret,
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

func (m *manager) ExpirationTime() time.Duration {
	return m.ttl
}

func (m *manager) Generate(user *model.User, userAgent string) (*model.Session, error) {
	// Housekeeping, sessions are never refreshed.
	if err := m.db.DeleteExpiredSessions(m.nowFunc()); err != nil {
		return nil, err
	}

	session := &model.Session{
		UserID:    user.ID,
		UserAgent: userAgent,
		ExpireAt:  m.nowFunc().Add(m.ttl).UTC(),
		Token:     SecureToken(TokenLength),
	}

	err := m.db.Save(session)
	return session, errors.Wrap(err, "could not persist session")
}

func (m *manager) Token(session *model.Session) (string, error) {
	now := m.nowFunc()

	jt := paseto.JSONToken{
		Issuer:     issuer,
		Audience:   audience,
		Jti:        strconv.Itoa(session.ID),
		Subject:    strconv.Itoa(session.UserID),
		IssuedAt:   now,
		NotBefore:  now,
		Expiration: session.ExpireAt,
	}
	jt.Set(tokenClaim, session.Token)

	token, err := m.v2.Encrypt(m.secret, jt, nil)
	return token, errors.Wrap(err, "could not encrypt session token")
}

func (m *manager) Validate(token string) (*model.Session, *model.User, error) {
	var jt paseto.JSONToken
	if err := m.v2.Decrypt(token, m.secret, &jt, nil); err != nil {
		return nil, nil, unauthorized()
	}

	err := jt.Validate(
		paseto.IssuedBy(issuer),
		paseto.ForAudience(audience),
		paseto.ValidAt(m.nowFunc()),
	)
	if err != nil {
		return nil, nil, unauthorized()
	}

	id, err := strconv.Atoi(jt.Jti)
	if err != nil {
		return nil, nil, unauthorized()
	}

	session, err := m.db.FindSession(id)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, nil, unauthorized()
		}
		return nil, nil, errors.Wrap(err, "could not get access to database")
	}

	var tk string
	if err = jt.Get(tokenClaim, &tk); err != nil {
		return nil, nil, unauthorized()
	}

	if !SecureCompare(session.Token, tk) || jt.Subject != strconv.Itoa(session.UserID) {
		return nil, nil, unauthorized()
	}

	if session.Expired(m.nowFunc()) {
		return nil, nil, unauthorized()
	}

	// Get current_user.
	user, err := m.db.FindUser(session.UserID)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, nil, unauthorized()
		}
		return nil, nil, errors.Wrap(err, "could not get access to database")
	}

	// Check if password has changed since the session was created.
	if session.CreatedAt != nil && session.CreatedAt.Unix() < user.PasswordUpdatedAt {
		return nil, nil, sferror.NewWithTagCode(http.StatusUnauthorized, "invalid-auth", "Revoked session.")
	}

	return session, user, nil
}

func (m *manager) Revoke(session *model.Session) error {
	err := m.db.Delete(session)
	if err != nil && !m.db.IsNotFound(err) {
		return errors.Wrap(err, "could not revoke session")
	}
	return nil
}

func unauthorized() error {
	return sferror.NewWithTagCode(http.StatusUnauthorized, "invalid-auth", "Invalid login credentials.")
}
