package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsValidation(Validation("bad input")))
	assert.True(t, IsNotFound(NotFound("vehicle %s not found", "v1")))
	assert.True(t, IsDuplicate(Duplicate("invoice number reused")))
	assert.True(t, IsInsufficientStock(InsufficientStock("short")))
	assert.True(t, IsCascadeIntegrity(CascadeIntegrity("orphan reference")))
	assert.True(t, IsResourceBusy(ResourceBusy("record busy")))

	assert.False(t, IsValidation(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("approving invoice: %w", NotFound("invoice %s not found", "i1"))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("x")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("x")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Duplicate("x")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(InsufficientStock("x")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ResourceBusy("x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CascadeIntegrity("x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Internal("x", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestPublicMessage_HidesInternals(t *testing.T) {
	assert.Equal(t, "odometer reading must be positive",
		PublicMessage(Validation("odometer reading must be positive")))
	// Contention is retryable and the client is told so.
	assert.Equal(t, "inventory record busy, try again later",
		PublicMessage(ResourceBusy("inventory record busy, try again later")))

	// Integrity and internal details never reach the client.
	assert.Equal(t, "internal server error",
		PublicMessage(CascadeIntegrity("work order item wo-1 references missing work order")))
	assert.Equal(t, "internal server error",
		PublicMessage(Internal("db down", errors.New("conn refused"))))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("plain")))
}

func TestWrapKeepsKind(t *testing.T) {
	base := InsufficientStock("have 5, requested 10")
	wrapped := Wrap(base, errors.New("tx aborted"))
	assert.True(t, IsInsufficientStock(wrapped))
	assert.Contains(t, wrapped.Error(), "tx aborted")
}
