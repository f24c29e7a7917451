package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

var (
	ErrRefreshTokenInvalid = errors.New("refresh token is invalid")
	ErrRefreshTokenExpired = errors.New("refresh token is expired or revoked")
)

// RefreshToken is a stored refresh token. Only a hash of the client
// secret is persisted.
type RefreshToken struct {
	Token     string
	TokenHash []byte
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	Revoked   bool
}

type RefreshRepository struct {
	db *sql.DB
}

func NewRefreshRepository(db *sql.DB) *RefreshRepository {
	return &RefreshRepository{db}
}

// SaveRefreshToken mints a refresh token for the user and returns the
// plaintext handed to the client, shaped as "<id>.<secret>".
func (r *RefreshRepository) SaveRefreshToken(userID string, ttl time.Duration) (string, error) {
	tokenID, err := ksuid.NewRandom()
	if err != nil {
		return "", errors.Wrap(err, "unable to generate refresh token id")
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Wrap(err, "unable to generate refresh token secret")
	}
	secretStr := base64.RawURLEncoding.EncodeToString(secret)
	hash := sha256.Sum256([]byte(secretStr))
	now := time.Now().UTC()
	_, err = r.db.Exec(
		`INSERT INTO refresh_token (token, token_hash, user_id, created_at, expires_at, revoked)
		VALUES ($1, $2, $3, $4, $5, FALSE)`,
		tokenID.String(), hash[:], userID, now, now.Add(ttl))
	if err != nil {
		return "", err
	}
	return tokenID.String() + "." + secretStr, nil
}

// ValidateRefreshToken checks a client-presented token and returns the
// owning user id. Revoked and expired tokens are rejected.
func (r *RefreshRepository) ValidateRefreshToken(raw string) (string, error) {
	tokenID, secret, ok := splitRefreshToken(raw)
	if !ok {
		return "", ErrRefreshTokenInvalid
	}
	var storedHash []byte
	var userID string
	var expiresAt time.Time
	var revoked bool
	err := r.db.QueryRow(
		`SELECT token_hash, user_id, expires_at, revoked FROM refresh_token WHERE token = $1`,
		tokenID).Scan(&storedHash, &userID, &expiresAt, &revoked)
	if err == sql.ErrNoRows {
		return "", ErrRefreshTokenInvalid
	}
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256([]byte(secret))
	if subtle.ConstantTimeCompare(hash[:], storedHash) != 1 {
		return "", ErrRefreshTokenInvalid
	}
	if revoked || time.Now().UTC().After(expiresAt) {
		return "", ErrRefreshTokenExpired
	}
	return userID, nil
}

// RevokeRefreshToken blacklists a single token. The caller must hold
// the matching secret; a bare id is not enough. Expired and already
// revoked tokens still revoke cleanly so logout always succeeds.
func (r *RefreshRepository) RevokeRefreshToken(raw string) error {
	tokenID, secret, ok := splitRefreshToken(raw)
	if !ok {
		return ErrRefreshTokenInvalid
	}
	var storedHash []byte
	err := r.db.QueryRow(
		`SELECT token_hash FROM refresh_token WHERE token = $1`,
		tokenID).Scan(&storedHash)
	if err == sql.ErrNoRows {
		return ErrRefreshTokenInvalid
	}
	if err != nil {
		return err
	}
	hash := sha256.Sum256([]byte(secret))
	if subtle.ConstantTimeCompare(hash[:], storedHash) != 1 {
		return ErrRefreshTokenInvalid
	}
	_, err = r.db.Exec(`UPDATE refresh_token SET revoked = TRUE WHERE token = $1`, tokenID)
	return err
}

func (r *RefreshRepository) RevokeAllForUser(userID string) error {
	_, err := r.db.Exec(`UPDATE refresh_token SET revoked = TRUE WHERE user_id = $1`, userID)
	return err
}

// RotateRefreshToken revokes the presented token and mints a new one
// for the same user.
func (r *RefreshRepository) RotateRefreshToken(raw string, ttl time.Duration) (string, string, error) {
	userID, err := r.ValidateRefreshToken(raw)
	if err != nil {
		return "", "", err
	}
	if err := r.RevokeRefreshToken(raw); err != nil {
		return "", "", err
	}
	newToken, err := r.SaveRefreshToken(userID, ttl)
	if err != nil {
		return "", "", err
	}
	return userID, newToken, nil
}

func splitRefreshToken(raw string) (tokenID, secret string, ok bool) {
	parts := strings.SplitN(raw, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
