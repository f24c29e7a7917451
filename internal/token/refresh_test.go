package token

import (
	"crypto/sha256"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestRevokeRefreshTokenRejectsWrongSecret(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewRefreshRepository(db)

	hash := sha256.Sum256([]byte("the-real-secret"))
	mockDB.ExpectQuery(`SELECT token_hash FROM refresh_token WHERE token = \$1`).
		WithArgs("2BJjBMRzbbPqYe4zd8QaTmVwXbn").
		WillReturnRows(sqlmock.NewRows([]string{"token_hash"}).AddRow(hash[:]))

	// a bare token id with a guessed secret must not revoke anything
	err = repo.RevokeRefreshToken("2BJjBMRzbbPqYe4zd8QaTmVwXbn.guessed-secret")
	assert.Equal(t, ErrRefreshTokenInvalid, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRevokeRefreshTokenWithMatchingSecret(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewRefreshRepository(db)

	hash := sha256.Sum256([]byte("the-real-secret"))
	mockDB.ExpectQuery(`SELECT token_hash FROM refresh_token WHERE token = \$1`).
		WithArgs("2BJjBMRzbbPqYe4zd8QaTmVwXbn").
		WillReturnRows(sqlmock.NewRows([]string{"token_hash"}).AddRow(hash[:]))
	mockDB.ExpectExec(`UPDATE refresh_token SET revoked = TRUE WHERE token = \$1`).
		WithArgs("2BJjBMRzbbPqYe4zd8QaTmVwXbn").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.RevokeRefreshToken("2BJjBMRzbbPqYe4zd8QaTmVwXbn.the-real-secret")
	assert.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRevokeRefreshTokenUnknownID(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewRefreshRepository(db)

	mockDB.ExpectQuery(`SELECT token_hash FROM refresh_token WHERE token = \$1`).
		WithArgs("2BJjBMRzbbPqYe4zd8QaTmVwXbn").
		WillReturnRows(sqlmock.NewRows([]string{"token_hash"}))

	err = repo.RevokeRefreshToken("2BJjBMRzbbPqYe4zd8QaTmVwXbn.whatever")
	assert.Equal(t, ErrRefreshTokenInvalid, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
