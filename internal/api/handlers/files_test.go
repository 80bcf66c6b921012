package handlers

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"
)

func header(mediaType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: "f",
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{mediaType}},
	}
}

func TestAdmitFile_PerTypeLimits(t *testing.T) {
	require.NoError(t, admitFile("application/pdf", maxPDFSize))
	require.Error(t, admitFile("application/pdf", maxPDFSize+1))

	require.NoError(t, admitFile("text/plain", maxTextSize))
	require.Error(t, admitFile("text/markdown", maxTextSize+1))

	require.NoError(t, admitFile("image/png", maxImageSize))
	require.Error(t, admitFile("image/jpeg", maxImageSize+1))

	require.NoError(t, admitFile("application/octet-stream", maxBinarySize))
	require.Error(t, admitFile("application/zip", maxBinarySize+1))
}

func TestFileCategory(t *testing.T) {
	require.Equal(t, "pdf", fileCategory("application/pdf"))
	require.Equal(t, "text", fileCategory("text/csv"))
	require.Equal(t, "image", fileCategory("image/webp"))
	require.Equal(t, "blob", fileCategory("application/zip"))
}

func TestAdmitChatFiles_PerCategoryCap(t *testing.T) {
	h := &Handler{}

	headers := make([]*multipart.FileHeader, 0, maxChatFilesPerCategory+1)
	for i := 0; i < maxChatFilesPerCategory; i++ {
		headers = append(headers, header("image/png", 1024))
	}
	attachments, err := h.admitChatFiles(headers)
	require.NoError(t, err)
	require.Len(t, attachments, maxChatFilesPerCategory)

	headers = append(headers, header("image/png", 1024))
	_, err = h.admitChatFiles(headers)
	require.Error(t, err)

	// A sixth file in a different category is still admitted.
	headers[maxChatFilesPerCategory] = header("application/pdf", 1024)
	attachments, err = h.admitChatFiles(headers)
	require.NoError(t, err)
	require.Len(t, attachments, maxChatFilesPerCategory+1)
}

func TestAdmitChatFiles_RejectsOversizeFile(t *testing.T) {
	h := &Handler{}
	_, err := h.admitChatFiles([]*multipart.FileHeader{header("image/png", maxImageSize+1)})
	require.Error(t, err)
}

func TestAdmitChatFiles_DefaultsMissingContentType(t *testing.T) {
	h := &Handler{}
	attachments, err := h.admitChatFiles([]*multipart.FileHeader{{
		Filename: "f",
		Size:     10,
		Header:   textproto.MIMEHeader{},
	}})
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	require.Equal(t, "application/octet-stream", attachments[0].mediaType)
}
