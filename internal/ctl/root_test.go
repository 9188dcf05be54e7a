package ctl

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	users.Repository
	created *models.User
	deleted string
}

func (s *stubUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	s.created = u
	return u, nil
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if s.created == nil || s.created.ID != id {
		return nil, common.ErrorNotFound
	}
	return s.created, nil
}

func (s *stubUsers) Delete(_ context.Context, id string) (*models.User, error) {
	s.deleted = id
	return s.created, nil
}

type stubRM struct {
	repo      *stubUsers
	migrated  bool
	statusErr error
}

func (m *stubRM) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return nil
}

func (m *stubRM) MigrationStatus(context.Context, *sql.DB) error { return m.statusErr }

func (m *stubRM) Users(dbx.DBTX) users.Repository { return m.repo }

type harness struct {
	env  *env
	rm   *stubRM
	out  *bytes.Buffer
	mock sqlmock.Sqlmock
	dsn  string
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()
	t.Setenv("AVATAR_DIR", t.TempDir())
	t.Setenv("BCRYPT_COST", "4")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	h := &harness{rm: &stubRM{repo: &stubUsers{}}, out: &bytes.Buffer{}, mock: mock}
	h.env = &env{
		stdin:  strings.NewReader(stdin),
		stdout: h.out,
		rm:     h.rm,
		openDB: func(_ context.Context, cfg *config.Config) (*sql.DB, error) {
			h.dsn = cfg.DatabaseDSN
			return db, nil
		},
	}
	return h
}

func (h *harness) run(args ...string) error {
	root := newRootCmd(h.env)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestVersion(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run("version"))
	assert.Contains(t, h.out.String(), "profilectl dev")
}

func TestMigrateUp_UsesDSNFlag(t *testing.T) {
	h := newHarness(t, "")
	h.mock.ExpectClose()

	require.NoError(t, h.run("migrate", "up", "--dsn", "postgres://x/y"))
	assert.True(t, h.rm.migrated)
	assert.Equal(t, "postgres://x/y", h.dsn)
	assert.Contains(t, h.out.String(), "migrations applied")
}

func TestMigrateStatus_PropagatesError(t *testing.T) {
	h := newHarness(t, "")
	h.rm.statusErr = errors.New("no table")

	assert.EqualError(t, h.run("migrate", "status"), "no table")
}

func TestUserCreate_ReadsPasswordFromStdin(t *testing.T) {
	h := newHarness(t, "Secret#123\n")

	require.NoError(t, h.run("user", "create", "--username", "Alice", "--email", "alice@example.com"))

	require.NotNil(t, h.rm.repo.created)
	assert.Equal(t, "alice", h.rm.repo.created.UserName)
	assert.NotEqual(t, "Secret#123", h.rm.repo.created.PasswordHash)
	assert.Contains(t, h.out.String(), `created user "alice"`)
}

func TestUserCreate_WeakPassword(t *testing.T) {
	h := newHarness(t, "weak\n")

	err := h.run("user", "create", "--username", "alice", "--email", "alice@example.com")
	require.Error(t, err)
	assert.Equal(t, "Password is not strong enough!", err.Error())
}

func TestUserCreate_RequiresFlags(t *testing.T) {
	h := newHarness(t, "")
	assert.Error(t, h.run("user", "create", "--username", "alice"))
}

func TestUserDelete(t *testing.T) {
	h := newHarness(t, "")
	id := "3f0e2c1a-9b8d-4e7f-a6c5-b4d3e2f1a0b9"
	h.rm.repo.created = &models.User{ID: id, UserName: "alice"}
	h.mock.ExpectBegin()
	h.mock.ExpectCommit()

	require.NoError(t, h.run("user", "delete", "--id", id))
	assert.Equal(t, id, h.rm.repo.deleted)
	assert.Contains(t, h.out.String(), `deleted user "alice"`)
}
