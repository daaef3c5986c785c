package domainerrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "bizdir/pkg/domain-errors"
)

func TestIs(t *testing.T) {
	err := dErrors.New(dErrors.CodeNotFound, "profile not found")
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	assert.False(t, dErrors.Is(err, dErrors.CodeInternal))
	assert.False(t, dErrors.Is(errors.New("plain"), dErrors.CodeNotFound))
}

func TestIsThroughWrapping(t *testing.T) {
	inner := dErrors.New(dErrors.CodeValidation, "company number must be 8 digits")
	wrapped := fmt.Errorf("submit step: %w", inner)
	assert.True(t, dErrors.Is(wrapped, dErrors.CodeValidation))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := dErrors.Wrap(dErrors.CodeInternal, "identity service unreachable", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "identity service unreachable", err.Error())
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(errors.New("boom")))
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(dErrors.New(dErrors.CodeBadRequest, "bad")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeBadRequest:   http.StatusBadRequest,
		dErrors.CodeValidation:   http.StatusBadRequest,
		dErrors.CodeUnauthorized: http.StatusUnauthorized,
		dErrors.CodeNotFound:     http.StatusNotFound,
		dErrors.CodeConflict:     http.StatusConflict,
		dErrors.CodeTimeout:      http.StatusGatewayTimeout,
		dErrors.CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, dErrors.ToHTTPStatus(code), "code %s", code)
	}
}
