// auth.go
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

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/traction-tracker/internal/services"
	"github.com/localnerve/traction-tracker/internal/session"
	"github.com/localnerve/traction-tracker/internal/types"
	"go.uber.org/zap"
)

// Locals keys
const (
	LocalUserID  = "userId"
	LocalSession = "session"
)

// RequireUser resolves the bearer token to a caller identity. Each request
// walks its own session through anonymous -> authenticating -> authenticated.
func RequireUser(auth services.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := c.Locals(LocalSession).(*session.Session)
		if !ok {
			sess = session.New()
			c.Locals(LocalSession, sess)
		}

		if err := sess.Begin(); err != nil {
			// already signed in earlier in the chain
			if sess.State() == session.Authenticated {
				return c.Next()
			}
			return err
		}

		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		identity, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			_ = sess.Fail()
			zap.L().Debug("authentication failed", zap.String("url", c.OriginalURL()), zap.Error(err))
			return err
		}

		if err := sess.Complete(identity.UserID); err != nil {
			return types.NewAuthenticationError("session could not be established")
		}

		c.Locals(LocalUserID, identity.UserID)
		return c.Next()
	}
}

// UserID returns the authenticated caller id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalUserID).(string); ok {
		return id
	}
	return ""
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
