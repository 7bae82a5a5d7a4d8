package syncx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/examportal/internal/db"
)

func TestEventRepoAppendSince(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file:eventlog_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer conn.Close()

	repo := NewEventRepo(conn)
	ev, err := NewEvent(EventExamImported, "e1", map[string]any{"question_count": 12})
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, ev))

	ev, err = NewEvent(EventSubmissionSubmitted, "s1", map[string]any{"exam_id": "e1", "percentage": 80})
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, ev))

	all, err := repo.Since(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, EventExamImported, all[0].Type)
	assert.Equal(t, "local", all[0].SiteID)
	assert.JSONEq(t, `{"question_count":12}`, all[0].DataJSON)

	rest, err := repo.Since(ctx, all[0].Seq, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "s1", rest[0].Key)
}
