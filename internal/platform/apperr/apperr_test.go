// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/murmur/internal/platform/apperr"
)

/*
TestWithCode verifies a reason code overrides the code but keeps the status,
and leaves the base error untouched.
*/
func TestWithCode(t *testing.T) {
	base := apperr.Unauthorized("Invalid credentials")
	coded := base.WithCode("INVALID_CREDENTIALS")

	assert.Equal(t, "INVALID_CREDENTIALS", coded.Code)
	assert.Equal(t, http.StatusUnauthorized, coded.HTTPStatus)
	assert.NotEqual(t, base.Code, coded.Code)
}

/*
TestAs verifies AppErrors are found through wrapping and plain errors are not.
*/
func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("session_login_failed: %w", apperr.Conflict("taken"))

	found := apperr.As(wrapped)
	require.NotNil(t, found)
	assert.Equal(t, http.StatusConflict, found.HTTPStatus)

	assert.Nil(t, apperr.As(errors.New("plain")))
}

/*
TestInternal verifies the cause is kept for logs but hidden from the message.
*/
func TestInternal(t *testing.T) {
	cause := errors.New("connection reset")
	internal := apperr.Internal(cause)

	assert.ErrorIs(t, internal, cause)
	assert.NotContains(t, internal.Error(), "connection reset")
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
}
