// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/cartfulhq/cartful/internal/dataset"
	"github.com/cartfulhq/cartful/internal/logging"
)

// writeDomainError maps domain error types to envelope responses.
// Unknown errors become opaque 500s; their detail goes to the log, not
// the client.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	var invalidParam *dataset.InvalidParameterError
	var notFound *dataset.NotFoundError
	var format *dataset.FormatError

	switch {
	case errors.As(err, &invalidParam):
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed,
			err.Error(), map[string]string{"param": invalidParam.Param})
	case errors.As(err, &notFound):
		rw.NotFound(err.Error())
	case errors.As(err, &format):
		rw.BadRequest(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		rw.ServiceUnavailable("request canceled or timed out")
	default:
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).
			Str("path", r.URL.Path).
			Msg("unhandled error in request")
		rw.InternalError("an internal error occurred")
	}
}
