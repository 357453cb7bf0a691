package resume_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker/internal/auth"
	"jobtracker/internal/resume"
	"jobtracker/internal/tracker"
)

func newUploadServer(t *testing.T, extractor resume.TextExtractor) http.Handler {
	t.Helper()
	store, err := tracker.NewMemoryStore()
	require.NoError(t, err)
	svc := tracker.NewService(store, nil)
	in := resume.NewIngester(&fakeBlobs{}, extractor, store, nil, t.TempDir())

	mux := http.NewServeMux()
	resume.NewHandler(svc, in, 1<<20).RegisterRoutes(mux)
	return auth.Middleware(auth.HeaderResolver{})(mux)
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postUpload(t *testing.T, h http.Handler, body *bytes.Buffer, contentType string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/upload-resume", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(auth.HeaderUserID, "u1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestUploadHandler_Success(t *testing.T) {
	h := newUploadServer(t, fakeExtractor{text: "Python, SQL and React"})
	body, ct := multipartBody(t, resume.FormField, "cv.pdf", []byte("%PDF"))

	code, out := postUpload(t, h, body, ct)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "https://res.example.com/raw/upload/resumes/u1/resume.pdf", out["resumeUrl"])
	assert.Equal(t, []any{"python", "react", "sql"}, out["skills"])
}

func TestUploadHandler_NoFile(t *testing.T) {
	h := newUploadServer(t, fakeExtractor{})
	body, ct := multipartBody(t, "", "", nil)

	code, out := postUpload(t, h, body, ct)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "No file uploaded", out["message"])
}

func TestUploadHandler_NotMultipart(t *testing.T) {
	h := newUploadServer(t, fakeExtractor{})
	code, _ := postUpload(t, h, bytes.NewBufferString(`{"resume":"x"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUploadHandler_UnsupportedType(t *testing.T) {
	h := newUploadServer(t, fakeExtractor{})
	body, ct := multipartBody(t, resume.FormField, "cv.png", []byte{0x89, 'P', 'N', 'G'})

	code, _ := postUpload(t, h, body, ct)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUploadHandler_ParseFailureIs500(t *testing.T) {
	h := newUploadServer(t, fakeExtractor{err: assert.AnError})
	body, ct := multipartBody(t, resume.FormField, "cv.docx", []byte("PK"))

	code, out := postUpload(t, h, body, ct)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Server error", out["message"])
}
