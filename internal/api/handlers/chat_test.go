package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"studypilot/internal/db"
	"studypilot/internal/prompt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type scriptedRow struct {
	scan func(dest ...any) error
}

func (r scriptedRow) Scan(dest ...any) error { return r.scan(dest...) }

type scriptedDBTX struct {
	queries []string
	execs   []string
	row     func(sql string, args ...any) pgx.Row
}

func (f *scriptedDBTX) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (f *scriptedDBTX) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, sql)
	return nil, pgx.ErrNoRows
}

func (f *scriptedDBTX) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, sql)
	return f.row(sql, args...)
}

func TestChatMessageContent_PlaceholderForFilesOnlyTurn(t *testing.T) {
	require.Equal(t, prompt.DefaultChatContent, chatMessageContent(""))
	require.Equal(t, "hello", chatMessageContent("hello"))
}

func TestConversationTitle_CappedAtRuneBoundary(t *testing.T) {
	long := strings.Repeat("a", conversationTitleLimit-1) + "日本語"
	title := conversationTitle(long)
	require.True(t, utf8.ValidString(title))
	require.LessOrEqual(t, len(title), conversationTitleLimit)
	require.Equal(t, strings.Repeat("a", conversationTitleLimit-1), title)

	require.Equal(t, prompt.DefaultChatContent, conversationTitle(""))
	require.Equal(t, "short", conversationTitle("short"))
}

func TestHandleChat_ForeignConversationRejectedBeforeFileWork(t *testing.T) {
	gin.SetMode(gin.TestMode)

	caller := uuid.New()
	owner := uuid.New()
	convID := uuid.New()
	now := time.Now()

	fake := &scriptedDBTX{}
	fake.row = func(_ string, _ ...any) pgx.Row {
		return scriptedRow{scan: func(dest ...any) error {
			*(dest[0].(*uuid.UUID)) = convID
			*(dest[1].(*uuid.UUID)) = owner
			*(dest[2].(*string)) = "title"
			*(dest[3].(*string)) = "chat"
			*(dest[6].(*time.Time)) = now
			*(dest[7].(*time.Time)) = now
			return nil
		}}
	}

	// Storage is deliberately nil: if the handler touched the blob store
	// before the ownership check, this test would panic.
	h := &Handler{DB: &db.DB{Queries: db.New(fake)}}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("content", "hi"))
	require.NoError(t, mw.WriteField("conversation_id", convID.String()))
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="files"; filename="pic.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 0x50, 0x4E, 0x47})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	router := gin.New()
	router.POST("/chat", func(c *gin.Context) {
		c.Set("userID", caller)
		h.HandleChat(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/chat", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Len(t, fake.queries, 1, "only the conversation lookup should run")
	require.Contains(t, fake.queries[0], "FROM conversations")
	require.Empty(t, fake.execs)
}
