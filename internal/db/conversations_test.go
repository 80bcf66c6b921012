package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakeDBTX struct {
	queries []string
	execs   []string
	row     func(sql string, args ...any) pgx.Row
}

func (f *fakeDBTX) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeDBTX) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, sql)
	return nil, pgx.ErrNoRows
}

func (f *fakeDBTX) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, sql)
	return f.row(sql, args...)
}

func TestCreateMessage_SingleStatementTouchesConversation(t *testing.T) {
	convID := uuid.New()
	msgID := uuid.New()
	now := time.Now()

	fake := &fakeDBTX{}
	fake.row = func(_ string, _ ...any) pgx.Row {
		return fakeRow{scan: func(dest ...any) error {
			*(dest[0].(*uuid.UUID)) = msgID
			*(dest[1].(*uuid.UUID)) = convID
			*(dest[2].(*string)) = "user"
			*(dest[3].(*string)) = "hello"
			*(dest[4].(*time.Time)) = now
			return nil
		}}
	}

	q := New(fake)
	m, err := q.CreateMessage(context.Background(), CreateMessageParams{
		ConversationID: convID,
		Role:           "user",
		Content:        "hello",
	})
	require.NoError(t, err)
	require.Equal(t, msgID, m.ID)
	require.Equal(t, convID, m.ConversationID)
	require.NotNil(t, m.AttachedFiles)

	// The insert and the recency bump must travel as one statement, so a
	// failure can never leave the conversation's updated_at stale.
	require.Len(t, fake.queries, 1)
	require.Contains(t, fake.queries[0], "INSERT INTO messages")
	require.Contains(t, fake.queries[0], "UPDATE conversations SET updated_at = now()")
	require.Empty(t, fake.execs)
}
