package routes

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"bloom/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadImage(t *testing.T) {
	dir := t.TempDir()
	app := setupTestApp(t, &config.Config{JWTSecret: "test-secret", UploadDir: dir})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Filename string `json:"filename"`
		Path     string `json:"path"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Filename)
	assert.Equal(t, "/uploads/"+body.Filename, body.Path)
	assert.Equal(t, ".jpg", filepath.Ext(body.Filename))

	data, err := os.ReadFile(filepath.Join(dir, body.Filename))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}

func TestUploadImageMissingFile(t *testing.T) {
	app := setupTestApp(t, nil)

	resp := doJSON(t, app, http.MethodPost, "/upload", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
