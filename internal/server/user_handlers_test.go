package server

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"devhub/internal/models"
	"devhub/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type profileResponse struct {
	Message string `json:"message"`
	User    struct {
		Username   string `json:"username"`
		FirstName  string `json:"firstName"`
		LastName   string `json:"lastName"`
		Bio        string `json:"bio"`
		ProfilePic string `json:"profile_pic"`
	} `json:"user"`
}

func multipartProfile(t *testing.T, token string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("profile_pic", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPut, "/edit_profile", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEditProfile_Encodings(t *testing.T) {
	app := newTestApp(t, nil)
	token := register(t, app, "alice", "alice@x.com", "Alice")

	var res profileResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/edit_profile", token,
		map[string]string{"bio": "gopher"}, &res))
	assert.Equal(t, "Profile updated successfully", res.Message)
	assert.Equal(t, "gopher", res.User.Bio)
	assert.Equal(t, "Alice", res.User.FirstName, "absent fields are left unchanged")

	form := url.Values{"lastName": {""}, "username": {"Alicia"}}
	req := httptest.NewRequest(http.MethodPut, "/edit_profile", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	req.Header.Set("Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, send(t, app, req, &res))
	assert.Equal(t, "alicia", res.User.Username)
	assert.Empty(t, res.User.LastName)
	assert.Equal(t, "gopher", res.User.Bio)

	req = multipartProfile(t, token, map[string]string{"firstName": ""}, "", nil)
	assert.Equal(t, http.StatusBadRequest, send(t, app, req, nil))
}

func TestEditProfile_AvatarRoundTrip(t *testing.T) {
	app := newTestApp(t, nil)
	token := register(t, app, "alice", "alice@x.com", "Alice")

	var res profileResponse
	req := multipartProfile(t, token, map[string]string{"firstName": "Al"}, "me.png", pngBytes(t))
	require.Equal(t, http.StatusOK, send(t, app, req, &res))
	assert.Equal(t, "Al", res.User.FirstName)
	require.NotEqual(t, models.DefaultProfilePic, res.User.ProfilePic)
	assert.True(t, strings.HasSuffix(res.User.ProfilePic, ".webp"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/uploads/"+res.User.ProfilePic, nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/uploads/missing.webp", "", nil, nil))
}

func TestEditProfile_AvatarStoreErrors(t *testing.T) {
	avatars := new(MockAvatarStore)
	app := newTestApp(t, avatars)
	token := register(t, app, "alice", "alice@x.com", "Alice")

	avatars.On("Save", mock.Anything, mock.MatchedBy(func(u storage.AvatarUpload) bool {
		return u.Filename == "notes.txt" && string(u.Content) == "hello"
	})).Return("", models.NewValidationError("Invalid file type")).Once()
	avatars.On("Path", "gone.webp").Return("", models.NewNotFoundError("File", "gone.webp")).Once()

	var out struct {
		Message string `json:"message"`
	}
	req := multipartProfile(t, token, nil, "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, send(t, app, req, &out))
	assert.Equal(t, "Invalid file type", out.Message)

	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/uploads/gone.webp", "", nil, nil))

	var me profileResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/current_user", token, nil, &me.User))
	assert.Equal(t, models.DefaultProfilePic, me.User.ProfilePic, "a failed upload leaves the profile untouched")
	avatars.AssertExpectations(t)
}
