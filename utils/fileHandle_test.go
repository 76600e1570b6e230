package utils

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proofHeader(t *testing.T, name string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("proof", name)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 receipt"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["proof"][0]
}

func TestLocalStoreSaveAndDelete(t *testing.T) {
	ctx := context.Background()
	store := LocalStore{Root: t.TempDir()}

	path, err := store.Save(ctx, proofHeader(t, "Receipt.PDF"), "proofs")
	require.NoError(t, err)
	assert.Equal(t, ".pdf", filepath.Ext(path))
	_, err = os.Stat(filepath.Join(store.Root, path))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, path))
	_, err = os.Stat(filepath.Join(store.Root, path))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, path), "deleting twice is harmless")
}

func TestCloudinaryPublicID(t *testing.T) {
	url := "https://res.cloudinary.com/demo/image/upload/v1700000000/academy/proofs/5f1c.png"
	assert.Equal(t, "academy/proofs/5f1c", cloudinaryPublicID(url))
	assert.Empty(t, cloudinaryPublicID("https://example.com/x.png"))
}
