package httpapi

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (e *testEnv) uploadAvatar(t *testing.T, token, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestUploadAvatar_NormalizesTo250PNG(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signup(t, "a@x.com")

	rec := env.uploadAvatar(t, token, "photo.png", testPNG(t, 64, 48))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, ok := env.store.blobs[user.ID]
	require.True(t, ok)

	img, err := png.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, 250, img.Bounds().Dx())
	assert.Equal(t, 250, img.Bounds().Dy())
}

func TestUploadAvatar_RejectsUnknownExtension(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signup(t, "a@x.com")

	rec := env.uploadAvatar(t, token, "document.pdf", []byte("%PDF-1.4"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "jpg, jpeg or png")
	assert.Empty(t, env.store.blobs[user.ID])
}

func TestUploadAvatar_RejectsGarbageImage(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "a@x.com")

	rec := env.uploadAvatar(t, token, "photo.png", []byte("not actually a png"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "not a valid image")
}

func TestUploadAvatar_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.uploadAvatar(t, "", "photo.png", testPNG(t, 10, 10))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetAvatar_Public(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signup(t, "a@x.com")

	rec := env.uploadAvatar(t, token, "photo.png", testPNG(t, 32, 32))
	require.Equal(t, http.StatusOK, rec.Code)

	// no Authorization header on the fetch
	rec = env.do(t, http.MethodGet, "/users/"+user.ID+"/avatar", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	_, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	assert.NoError(t, err)
}

func TestGetAvatar_Missing(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.signup(t, "a@x.com")

	// a user without an avatar and an unknown user both 404
	rec := env.do(t, http.MethodGet, "/users/"+user.ID+"/avatar", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/users/u-ghost/avatar", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAvatar(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signup(t, "a@x.com")

	rec := env.uploadAvatar(t, token, "photo.png", testPNG(t, 32, 32))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/users/me/avatar", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.store.blobs)

	rec = env.do(t, http.MethodGet, "/users/"+user.ID+"/avatar", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
