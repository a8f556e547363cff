package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedesk/tradelog/auth"
	"github.com/tradedesk/tradelog/models"
	"github.com/tradedesk/tradelog/repositories"
)

func TestUserLogin(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	created, err := env.services.Users.Create(ctx, "trader1", "hunter2", models.RoleUser, nil)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", created.PasswordHash, "password must not be stored in the clear")

	token, user, err := env.services.Users.Login(ctx, "trader1", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "trader1", user.Username)

	session, ok := env.sessions.GetSession(token)
	require.True(t, ok)
	assert.Equal(t, models.RoleUser, session.Role)

	// A successful login stamps last_login.
	all, err := env.services.Users.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotNil(t, all[0].LastLogin)
}

func TestUserLoginStampFailureLeavesNoSession(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Users.Create(ctx, "trader1", "hunter2", models.RoleUser, nil)
	require.NoError(t, err)

	_, err = env.db.Exec(`
		CREATE TRIGGER fail_last_login BEFORE UPDATE OF last_login ON users
		BEGIN
			SELECT RAISE(ABORT, 'simulated storage failure');
		END;
	`)
	require.NoError(t, err)

	_, _, err = env.services.Users.Login(ctx, "trader1", "hunter2")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	// A login that failed after the credential check must not leave a
	// live token in the session table.
	assert.Zero(t, env.sessions.ActiveSessions())
}

func TestUserLoginFailuresAreIndistinguishable(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Users.Create(ctx, "trader1", "hunter2", models.RoleUser, nil)
	require.NoError(t, err)

	_, _, wrongPassword := env.services.Users.Login(ctx, "trader1", "wrong")
	_, _, unknownUser := env.services.Users.Login(ctx, "nobody", "hunter2")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestUserCreateValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Users.Create(ctx, "  ", "pw", models.RoleUser, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.services.Users.Create(ctx, "trader1", "", models.RoleUser, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.services.Users.Create(ctx, "trader1", "pw", "superuser", nil)
	assert.ErrorIs(t, err, ErrValidation)

	// An empty role defaults to the regular user role.
	created, err := env.services.Users.Create(ctx, "trader1", "pw", "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, created.Role)

	_, err = env.services.Users.Create(ctx, "trader1", "pw2", models.RoleUser, nil)
	assert.ErrorIs(t, err, repositories.ErrConflict)
}

func TestUserDelete(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Users.Create(ctx, "boss", "pw", models.RoleAdmin, []string{"*"})
	require.NoError(t, err)
	_, err = env.services.Users.Create(ctx, "trader1", "pw", models.RoleUser, nil)
	require.NoError(t, err)

	// Admin accounts cannot be deleted.
	assert.ErrorIs(t, env.services.Users.Delete(ctx, "boss"), ErrAdminProtected)

	// Deleting a user revokes all their sessions first.
	token, _, err := env.services.Users.Login(ctx, "trader1", "pw")
	require.NoError(t, err)

	require.NoError(t, env.services.Users.Delete(ctx, "trader1"))
	_, ok := env.sessions.GetSession(token)
	assert.False(t, ok)

	assert.ErrorIs(t, env.services.Users.Delete(ctx, "trader1"), repositories.ErrNotFound)
}

func TestUserLogout(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Users.Create(ctx, "trader1", "pw", models.RoleUser, nil)
	require.NoError(t, err)
	token, _, err := env.services.Users.Login(ctx, "trader1", "pw")
	require.NoError(t, err)

	require.NoError(t, env.services.Users.Logout("Bearer "+token))
	_, ok := env.sessions.GetSession(token)
	assert.False(t, ok)

	// Logging out an already-revoked token still succeeds.
	require.NoError(t, env.services.Users.Logout("Bearer "+token))

	// A header that does not parse is the caller's error.
	assert.ErrorIs(t, env.services.Users.Logout(""), auth.ErrAuthRequired)
	assert.ErrorIs(t, env.services.Users.Logout("Basic xyz"), auth.ErrMalformedHeader)
}

func TestUserIntrospect(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Users.Create(ctx, "boss", "pw", models.RoleAdmin, []string{"*"})
	require.NoError(t, err)
	token, _, err := env.services.Users.Login(ctx, "boss", "pw")
	require.NoError(t, err)

	info := env.services.Users.Introspect(ctx, "Bearer "+token)
	assert.True(t, info.Valid)
	assert.Equal(t, "boss", info.Username)
	assert.Equal(t, models.RoleAdmin, info.Role)
	assert.Equal(t, []string{"*"}, info.Permissions)

	// Invalid tokens never error, they introspect as not valid.
	info = env.services.Users.Introspect(ctx, "Bearer never-issued")
	assert.False(t, info.Valid)
	assert.Empty(t, info.Username)

	info = env.services.Users.Introspect(ctx, "")
	assert.False(t, info.Valid)
}

func TestUserBootstrap(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	// An empty table with no configured credentials is a hard error.
	assert.Error(t, env.services.Users.Bootstrap(ctx, "", ""))

	require.NoError(t, env.services.Users.Bootstrap(ctx, "admin", "secret"))

	_, user, err := env.services.Users.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, []string{"*"}, user.Permissions)

	// A populated table makes bootstrap a no-op, even with different creds.
	require.NoError(t, env.services.Users.Bootstrap(ctx, "other", "pw"))
	all, err := env.services.Users.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAuditServiceCSVExport(t *testing.T) {
	env := setupTestEnv(t)
	ctx := actingAs("alice")

	created, err := env.services.Trades.Create(ctx, sampleEntry())
	require.NoError(t, err)
	require.NoError(t, env.services.Trades.Delete(ctx, created.ID))

	today := models.FormatDate(createdAtOf(t, env, created.ID))
	var buf bytes.Buffer
	require.NoError(t, env.services.Audit.WriteCSV(ctx, &buf, models.DateRange{From: today, To: today}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2, "expected a header and one deleted-snapshot row")
	assert.True(t, strings.HasPrefix(lines[0], "entry_id,trade_date,"))
	assert.Contains(t, lines[1], "DELETE,deleted,alice")

	// An invalid range is rejected before anything is written.
	var empty bytes.Buffer
	err = env.services.Audit.WriteCSV(ctx, &empty, models.DateRange{From: "2025-03-31", To: "2025-03-01"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, empty.Len())
}

// createdAtOf looks up when the audit trail of an entry was written, so
// range queries in tests do not depend on the wall clock date.
func createdAtOf(t *testing.T, env *testEnv, entryID int64) time.Time {
	t.Helper()
	logs, err := env.services.Audit.GetLogsForEntry(context.Background(), entryID)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	return logs[0].ChangedAt
}
