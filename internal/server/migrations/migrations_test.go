package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_EmbedsGooseFiles(t *testing.T) {
	names, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		b, err := fs.ReadFile(Migrations, name)
		require.NoError(t, err)
		body := string(b)
		assert.True(t, strings.Contains(body, "-- +goose Up"), "%s lacks Up section", name)
		assert.True(t, strings.Contains(body, "-- +goose Down"), "%s lacks Down section", name)
	}
}

func TestMigrations_UsersHasCaseInsensitiveUniqueIndexes(t *testing.T) {
	b, err := fs.ReadFile(Migrations, "00001_create_users.sql")
	require.NoError(t, err)

	body := string(b)
	assert.Contains(t, body, "users_username_key ON users (lower(username))")
	assert.Contains(t, body, "users_email_key ON users (lower(email))")
}
