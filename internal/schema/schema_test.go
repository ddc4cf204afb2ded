package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/ideaboard/internal/dbx"
	"github.com/dmitrijs2005/ideaboard/internal/libsql"
	"github.com/dmitrijs2005/ideaboard/internal/libsql/libsqltest"
	"github.com/dmitrijs2005/ideaboard/internal/sqlexec"
)

type recordingExec struct {
	sqls   []string
	failAt int
}

func (r *recordingExec) Execute(_ context.Context, sql string, _ []any) (*dbx.Result, error) {
	r.sqls = append(r.sqls, sql)
	if r.failAt > 0 && len(r.sqls) == r.failAt {
		return nil, errors.New("boom")
	}
	return &dbx.Result{Rows: []dbx.Row{}}, nil
}

func TestApply_IssuesAllStatements(t *testing.T) {
	rec := &recordingExec{}
	require.NoError(t, Apply(context.Background(), rec))
	assert.Equal(t, Statements, rec.sqls)
}

func TestApply_StopsOnFirstError(t *testing.T) {
	rec := &recordingExec{failAt: 2}
	err := Apply(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 2")
	assert.Len(t, rec.sqls, 2)
}

func TestApply_IdempotentOverHTTP(t *testing.T) {
	srv := libsqltest.New(t, "tok")
	c := libsql.NewClient(srv.URL, "tok")
	ctx := context.Background()

	require.NoError(t, Apply(ctx, c))
	require.NoError(t, Apply(ctx, c))

	res, err := c.Execute(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`, nil)
	require.NoError(t, err)

	var names []string
	for _, r := range res.Rows {
		names = append(names, r.String("name"))
	}
	assert.Equal(t, []string{"post_marks", "posts", "sessions", "users"}, names)
}

func TestApply_SQLite(t *testing.T) {
	db, err := sqlexec.Open(context.Background(), sqlexec.DriverSQLite, "file:schema_apply?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Apply(context.Background(), db))
	require.NoError(t, Apply(context.Background(), db))
}
