package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
	"github.com/dmitrijs2005/ideaboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ideaboard/internal/client/storage"
	"github.com/dmitrijs2005/ideaboard/internal/common"
	"github.com/dmitrijs2005/ideaboard/internal/cryptox"
	"github.com/dmitrijs2005/ideaboard/internal/libsql"
	"github.com/dmitrijs2005/ideaboard/internal/libsql/libsqltest"
	"github.com/dmitrijs2005/ideaboard/internal/schema"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

var t0 = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type env struct {
	srv   *libsqltest.Server
	exec  *libsql.Client
	store *storage.Store
	clk   *clock
}

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TEXT NOT NULL)`)
	require.NoError(t, err)
	return storage.New(metadata.NewSQLiteRepository(db), "")
}

func newEnv(t *testing.T) *env {
	t.Helper()
	srv := libsqltest.New(t, "secret")
	exec := libsql.NewClient(srv.URL, "secret")
	require.NoError(t, schema.Apply(context.Background(), exec))
	return &env{srv: srv, exec: exec, store: newStore(t), clk: &clock{t: t0}}
}

func testHashers() *cryptox.Registry {
	return cryptox.NewRegistry(cryptox.BcryptHasher{Cost: bcrypt.MinCost}, cryptox.ScryptHasher{})
}

// service returns a fresh service, as a restarted process would build it.
func (e *env) service(opts ...AuthOption) AuthService {
	base := []AuthOption{WithClock(e.clk.now), WithHashers(testHashers())}
	return NewAuthService(e.exec, e.store, append(base, opts...)...)
}

func (e *env) sessionRows(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, e.srv.DB.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n))
	return n
}

func (e *env) persistedToken(t *testing.T) string {
	t.Helper()
	var tok string
	e.store.GetJSON(context.Background(), storage.KeySessionToken, &tok)
	return tok
}

// plainHasher stores nothing, which trips write verification.
type plainHasher struct{}

func (plainHasher) Algorithm() string { return "plain" }
func (plainHasher) Hash([]byte) (cryptox.Credentials, error) {
	return cryptox.Credentials{Algo: "plain"}, nil
}
func (plainHasher) Verify([]byte, string, string) (bool, error) { return false, nil }

// ---- register / login ----

func TestRegisterThenLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.service()

	require.NoError(t, a.Register(ctx, "  Alice ", []byte("pw1")))

	s, err := a.Login(ctx, "ALICE", []byte("pw1"), true)
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Username)
	assert.NotEmpty(t, s.UserID)
	assert.Equal(t, t0, s.CreatedAt)
	assert.Equal(t, t0.Add(14*24*time.Hour), s.ExpiresAt)
	assert.Equal(t, s.Token, e.persistedToken(t))
	assert.Equal(t, 1, e.sessionRows(t))

	var algo, salt string
	require.NoError(t, e.srv.DB.QueryRow(`SELECT password_algo, password_salt FROM users WHERE username = 'alice'`).Scan(&algo, &salt))
	assert.Equal(t, cryptox.AlgoBcrypt, algo)
	assert.Len(t, salt, 29)
}

func TestRegisterThenLogin_LongPassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.service()
	pw := bytes.Repeat([]byte("p"), 80)

	require.NoError(t, a.Register(ctx, "bob", pw))

	s, err := a.Login(ctx, "bob", pw, false)
	require.NoError(t, err)
	assert.Equal(t, "bob", s.Username)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	a := e.service()

	err := a.Register(context.Background(), "   ", []byte("pw"))
	require.ErrorIs(t, err, common.ErrValidation)

	err = a.Register(context.Background(), "bob", nil)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestLogin_WrongPasswordAndUnknownUserLookTheSame(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.service()
	require.NoError(t, a.Register(ctx, "alice", []byte("right")))

	_, errWrong := a.Login(ctx, "alice", []byte("wrong"), false)
	_, errUnknown := a.Login(ctx, "nobody", []byte("right"), false)

	require.ErrorIs(t, errWrong, common.ErrUnauthorized)
	require.ErrorIs(t, errUnknown, common.ErrUnauthorized)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.Equal(t, 0, e.sessionRows(t))
}

func TestRegister_OverwritesExistingCredentials(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.service()

	require.NoError(t, a.Register(ctx, "alice", []byte("old")))
	require.NoError(t, a.Register(ctx, "alice", []byte("new")))

	_, err := a.Login(ctx, "alice", []byte("old"), false)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = a.Login(ctx, "alice", []byte("new"), false)
	require.NoError(t, err)

	var n int
	require.NoError(t, e.srv.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestLogin_LegacyScrypt(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	creds, err := cryptox.ScryptHasher{}.Hash([]byte("pw"))
	require.NoError(t, err)
	_, err = e.srv.DB.Exec(`INSERT INTO users (id, username, password_algo, password_salt, password_hash, created_at, updated_at)
		VALUES ('u1', 'carol', 'SCRYPT', ?, ?, '2024-01-01T00:00:00.000Z', '2024-01-01T00:00:00.000Z')`,
		creds.Salt, creds.Hash)
	require.NoError(t, err)

	s, err := e.service().Login(ctx, "carol", []byte("pw"), false)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
}

func TestLogin_UnknownAlgorithmFailsClosed(t *testing.T) {
	e := newEnv(t)
	_, err := e.srv.DB.Exec(`INSERT INTO users (id, username, password_algo, password_salt, password_hash, created_at, updated_at)
		VALUES ('u1', 'dave', 'argon2', 'x', 'y', '2024-01-01T00:00:00.000Z', '2024-01-01T00:00:00.000Z')`)
	require.NoError(t, err)

	_, err = e.service().Login(context.Background(), "dave", []byte("pw"), false)
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestRegister_VerifyWrites(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.service(WithVerifyWrites(true)).Register(ctx, "alice", []byte("pw")))

	a := e.service(WithVerifyWrites(true), WithHashers(cryptox.NewRegistry(plainHasher{})))
	err := a.Register(ctx, "bob", []byte("pw"))
	require.ErrorIs(t, err, common.ErrIntegrity)
}

func TestRegister_ConfigErrorMakesNoRequest(t *testing.T) {
	srv := libsqltest.New(t, "secret")
	a := NewAuthService(libsql.NewClient(srv.URL, ""), newStore(t), WithHashers(testHashers()))

	err := a.Register(context.Background(), "alice", []byte("pw"))
	require.ErrorIs(t, err, common.ErrConfiguration)
	assert.Empty(t, srv.Requests())
}

// ---- sessions ----

func TestCurrentSession_RestoredAfterRestart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.service().Register(ctx, "alice", []byte("pw")))
	s, err := e.service().Login(ctx, "alice", []byte("pw"), true)
	require.NoError(t, err)

	e.clk.t = t0.Add(24 * time.Hour)
	got, err := e.service().CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.Token, got.Token)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, s.ExpiresAt, got.ExpiresAt)

	id, err := e.service().CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.UserID, id)
}

func TestCurrentSession_NotRememberedIsProcessOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.service()
	require.NoError(t, a.Register(ctx, "alice", []byte("pw")))
	_, err := a.Login(ctx, "alice", []byte("pw"), false)
	require.NoError(t, err)

	got, err := a.CurrentSession(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)

	got, err = e.service().CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCurrentSession_ExpiredIsClearedEagerly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.service()
	require.NoError(t, a.Register(ctx, "alice", []byte("pw")))
	_, err := a.Login(ctx, "alice", []byte("pw"), true)
	require.NoError(t, err)

	e.clk.t = t0.Add(common.SessionValidity + time.Second)

	got, err := a.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, e.persistedToken(t))

	got, err = e.service().CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCurrentSession_NetworkErrorKeepsLocalState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.service().Register(ctx, "alice", []byte("pw")))
	_, err := e.service().Login(ctx, "alice", []byte("pw"), true)
	require.NoError(t, err)

	for _, k := range []string{libsqltest.KindKeyed, libsqltest.KindTyped, libsqltest.KindExecute} {
		e.srv.Reject(k, http.StatusServiceUnavailable)
	}

	got, err := e.service().CurrentSession(ctx)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, common.ErrNetwork))
	assert.NotEmpty(t, e.persistedToken(t))
}

func TestCurrentSession_NothingStored(t *testing.T) {
	e := newEnv(t)
	before := len(e.srv.Requests())

	got, err := e.service().CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Len(t, e.srv.Requests(), before, "no remote lookup without a stored token")
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.service()
	require.NoError(t, a.Register(ctx, "alice", []byte("pw")))
	_, err := a.Login(ctx, "alice", []byte("pw"), true)
	require.NoError(t, err)
	require.Equal(t, 1, e.sessionRows(t))

	require.NoError(t, a.Logout(ctx))

	assert.Equal(t, 0, e.sessionRows(t))
	assert.Empty(t, e.persistedToken(t))
	got, err := a.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLogout_UsesCachedTokenWhenNotRemembered(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.service()
	require.NoError(t, a.Register(ctx, "alice", []byte("pw")))
	_, err := a.Login(ctx, "alice", []byte("pw"), false)
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx))
	assert.Equal(t, 0, e.sessionRows(t))
}

func TestLogout_ClearsLocallyEvenWhenRemoteFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.service()
	require.NoError(t, a.Register(ctx, "alice", []byte("pw")))
	_, err := a.Login(ctx, "alice", []byte("pw"), true)
	require.NoError(t, err)

	for _, k := range []string{libsqltest.KindKeyed, libsqltest.KindTyped, libsqltest.KindExecute} {
		e.srv.Reject(k, http.StatusInternalServerError)
	}

	err = a.Logout(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Empty(t, e.persistedToken(t))

	got, err := a.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// ---- verify ----

func TestVerifyCredentials(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.service()
	require.NoError(t, a.Register(ctx, "alice", []byte("pw")))

	check, err := a.VerifyCredentials(ctx, " Alice ", []byte("pw"))
	require.NoError(t, err)
	assert.True(t, check.Match)
	assert.Equal(t, "alice", check.Username)
	assert.Equal(t, cryptox.AlgoBcrypt, check.Algo)
	assert.Equal(t, 29, check.SaltLen)
	assert.Equal(t, 60, check.HashLen)

	check, err = a.VerifyCredentials(ctx, "alice", []byte("nope"))
	require.NoError(t, err)
	assert.False(t, check.Match)

	assert.Equal(t, 0, e.sessionRows(t))
}

func TestVerifyCredentials_Scrypt(t *testing.T) {
	e := newEnv(t)
	creds, err := cryptox.ScryptHasher{}.Hash([]byte("pw"))
	require.NoError(t, err)
	_, err = e.srv.DB.Exec(`INSERT INTO users (id, username, password_algo, password_salt, password_hash, created_at, updated_at)
		VALUES ('u1', 'carol', 'scrypt', ?, ?, '2024-01-01T00:00:00.000Z', '2024-01-01T00:00:00.000Z')`,
		creds.Salt, creds.Hash)
	require.NoError(t, err)

	check, err := e.service().VerifyCredentials(context.Background(), "carol", []byte("pw"))
	require.NoError(t, err)
	assert.True(t, check.Match)
	assert.Equal(t, 32, check.SaltLen)
	assert.Equal(t, 64, check.HashLen)
}

func TestVerifyCredentials_UnknownUserAndAlgorithm(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.service().VerifyCredentials(ctx, "nobody", []byte("pw"))
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = e.srv.DB.Exec(`INSERT INTO users (id, username, password_algo, password_salt, password_hash, created_at, updated_at)
		VALUES ('u2', 'dave', 'argon2', 'x', 'y', '2024-01-01T00:00:00.000Z', '2024-01-01T00:00:00.000Z')`)
	require.NoError(t, err)

	check, err := e.service().VerifyCredentials(ctx, "dave", []byte("pw"))
	require.ErrorIs(t, err, cryptox.ErrUnknownAlgorithm)
	require.NotNil(t, check)
	assert.False(t, check.Match)
	assert.Equal(t, "argon2", check.Algo)
}

// ---- ping / migrate ----

func TestPingAndMigrate(t *testing.T) {
	srv := libsqltest.New(t, "secret")
	a := NewAuthService(libsql.NewClient(srv.URL, "secret"), newStore(t))
	ctx := context.Background()

	require.NoError(t, a.Ping(ctx))
	require.NoError(t, a.Migrate(ctx))
	require.NoError(t, a.Migrate(ctx))

	var n int
	require.NoError(t, srv.DB.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'sessions')`).Scan(&n))
	assert.Equal(t, 2, n)
}

// ---- cache ----

func TestSessionCache(t *testing.T) {
	var c SessionCache
	assert.Nil(t, c.Get())

	s := &models.Session{Token: "t", Username: "alice"}
	c.Set(s)
	got := c.Get()
	require.NotNil(t, got)
	got.Username = "mallory"
	assert.Equal(t, "alice", c.Get().Username)

	c.Clear()
	assert.Nil(t, c.Get())
}
