// response.go
//
// Growth tracking for small software products: apps, metric history, action plans and AI suggestions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of traction-tracker.
// traction-tracker is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// traction-tracker is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with traction-tracker.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/traction-tracker/internal/types"
	"go.uber.org/zap"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string, kind types.ErrorKind) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"kind":      kind,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// ServiceErrorResponse renders an error returned by the services package.
// Typed errors keep their status and kind, anything else is a 500 tagged with op.
func ServiceErrorResponse(c *fiber.Ctx, err error, op string) error {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		if ce.Kind == types.KindUpstream {
			zap.L().Error("upstream failure", zap.String("op", op), zap.Error(err))
		}
		return ErrorResponse(c, ce.Message, ce.Code, ce.Type, ce.Kind)
	}

	zap.L().Error("request failed", zap.String("op", op), zap.String("url", c.OriginalURL()), zap.Error(err))
	return ErrorResponse(c, "Internal error", fiber.StatusInternalServerError, op, types.KindInternal)
}

// FiberErrorHandler renders errors returned from handlers and middleware in
// the standard envelope.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := types.KindInternal
		switch {
		case fe.Code == fiber.StatusNotFound:
			kind = types.KindNotFound
		case fe.Code == fiber.StatusUnauthorized:
			kind = types.KindAuthentication
		case fe.Code < fiber.StatusInternalServerError:
			kind = types.KindValidation
		}
		return ErrorResponse(c, fe.Message, fe.Code, "http", kind)
	}
	return ServiceErrorResponse(c, err, "http")
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "data.notfound", types.KindNotFound)
}

// MutationSuccessResponse sends a success response for deletes
func MutationSuccessResponse(c *fiber.Ctx, affectedRows int64) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":      "Success",
		"ok":           true,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"affectedRows": affectedRows,
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Kind      string `json:"kind"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message      string `json:"message"`
	Ok           bool   `json:"ok"`
	Timestamp    string `json:"timestamp"`
	AffectedRows int64  `json:"affectedRows"`
}
