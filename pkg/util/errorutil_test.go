package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("domain error passes through wrapping", func(t *testing.T) {
		base := NewForbidden("forbidden access")
		got := ToDomainError(fmt.Errorf("gate: %w", base))
		require.NotNil(t, got)
		assert.Equal(t, "FORBIDDEN", got.Code)
		assert.Equal(t, http.StatusForbidden, got.HTTPStatus)
	})

	t.Run("fiber error keeps status", func(t *testing.T) {
		got := ToDomainError(fiber.NewError(http.StatusBadRequest, "invalid payload"))
		assert.Equal(t, "BAD_REQUEST", got.Code)
		assert.Equal(t, "invalid payload", got.Message)
		assert.Equal(t, http.StatusBadRequest, got.HTTPStatus)
	})

	t.Run("no rows is not found", func(t *testing.T) {
		got := ToDomainError(pgx.ErrNoRows)
		assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
	})

	t.Run("anything else is internal", func(t *testing.T) {
		cause := errors.New("boom")
		got := ToDomainError(cause)
		assert.Equal(t, "INTERNAL_ERROR", got.Code)
		assert.ErrorIs(t, got, cause)
	})
}

func TestStoreError(t *testing.T) {
	assert.NoError(t, StoreError("user", nil))

	notFound := ToDomainError(StoreError("user", pgx.ErrNoRows))
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)
	assert.Equal(t, "user not found", notFound.Message)

	cause := errors.New("connection refused")
	upstream := ToDomainError(StoreError("user", cause))
	assert.Equal(t, http.StatusBadGateway, upstream.HTTPStatus)
	assert.Equal(t, "UPSTREAM_STORE_FAILURE", upstream.Code)
	assert.ErrorIs(t, upstream, cause)
}

func TestDomainErrorMessage(t *testing.T) {
	err := NewInternalError(errors.New("disk full"))
	assert.Equal(t, "internal server error: disk full", err.Error())
	assert.Equal(t, "unauthorized access", NewUnauthorized("unauthorized access").Error())
}
