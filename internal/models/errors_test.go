package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), fiber.StatusBadRequest},
		{"conflict", NewConflictError("taken"), fiber.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("no"), fiber.StatusUnauthorized},
		{"forbidden", NewForbiddenError("not yours"), fiber.StatusForbidden},
		{"not found", NewNotFoundError("Post", 7), fiber.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", NewNotFoundError("Post", 7)), fiber.StatusNotFound},
		{"internal", NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestNewNotFoundError_Message(t *testing.T) {
	err := NewNotFoundError("Comment", 12)
	assert.Equal(t, "Comment with ID 12 not found", err.Error())
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(nil))
}

func TestRespondWithError_HidesInternalDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		err := NewInternalError(errors.New("pq: connection refused"))
		return RespondWithError(c, HTTPStatus(err), err)
	})
	app.Get("/conflict", func(c *fiber.Ctx) error {
		err := NewConflictError("Username already exists")
		return RespondWithError(c, HTTPStatus(err), err)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/internal", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body.Message)
	assert.Equal(t, CodeInternal, body.Code)

	resp, err = app.Test(httptest.NewRequest("GET", "/conflict", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Username already exists", body.Message)
	assert.Equal(t, CodeConflict, body.Code)
}

func TestExcerpt(t *testing.T) {
	short := "hello"
	assert.Equal(t, short, Excerpt(short, 200))

	long := make([]rune, 250)
	for i := range long {
		long[i] = 'é'
	}
	got := Excerpt(string(long), 200)
	assert.Equal(t, string(long[:200])+"...", got)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 2, PageCount(11, 10))
	assert.Equal(t, 0, PageCount(5, 0))
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Alice", (&User{FirstName: "Alice"}).FullName())
	assert.Equal(t, "Alice Smith", (&User{FirstName: "Alice", LastName: "Smith"}).FullName())
	assert.Equal(t, "alice", NormalizeUsername("  Alice "))
}
