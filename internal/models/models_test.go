package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestTagBeforeSave_Lowercases(t *testing.T) {
	tag := &Tag{Title: "  Go "}
	assert.NoError(t, tag.BeforeSave(nil))
	assert.Equal(t, "go", tag.Title)
}

func TestIsNotFound(t *testing.T) {
	notFound := NewNotFoundError("Post", "hello-world")
	wrapped := fmt.Errorf("loading page: %w", notFound)

	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(NewValidationError("bad")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.Equal(t, "Post hello-world not found", notFound.Error())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewNotFoundError("Tag", "go"), fiber.StatusNotFound},
		{NewValidationError("bad slug"), fiber.StatusBadRequest},
		{NewConflictError("duplicate", nil), fiber.StatusConflict},
		{NewInternalError(errors.New("db down")), fiber.StatusInternalServerError},
		{errors.New("unknown"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error: connection refused", err.Error())
}
