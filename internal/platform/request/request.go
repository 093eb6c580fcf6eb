// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package requestutil reads the parts of an HTTP request the handlers need:
// a bounded JSON body, chi URL parameters and the authenticated caller.
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/murmur/internal/platform/apperr"
	"github.com/taibuivan/murmur/internal/platform/ctxutil"
	"github.com/taibuivan/murmur/internal/platform/validate"
)

// maxBodyBytes bounds every JSON request body. The largest legitimate body is
// a 2000-character message, far below this.
const maxBodyBytes = 64 << 10

// DecodeJSON decodes a single JSON value from the body into target.
//
// Oversized, malformed or multi-value bodies all yield [validate.ErrInvalidJSON].
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(writer, request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	if decoder.More() {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// RequiredUserID returns the caller's account id or an Unauthorized error.
func RequiredUserID(request *http.Request) (string, error) {
	userID, ok := ctxutil.AuthUserID(request.Context())
	if !ok {
		return "", apperr.Unauthorized("Authentication required")
	}
	return userID, nil
}
