// auth_service.go
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

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/authorizerdev/authorizer-go"
	"github.com/golang-jwt/jwt/v5"
	"github.com/localnerve/traction-tracker/internal/config"
	"github.com/localnerve/traction-tracker/internal/types"
	"github.com/localnerve/traction-tracker/internal/utils"
	"go.uber.org/zap"
)

// Identity is a resolved caller
type Identity struct {
	UserID string
}

// Authenticator resolves a bearer credential to a caller identity
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// NewAuthenticator builds the Authenticator selected by AUTH_MODE
func NewAuthenticator(cfg *config.Config, redirectURL string) (Authenticator, error) {
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		return NewJWTAuthenticator(cfg.AuthJWTSecret), nil
	case config.AuthModeAuthorizer:
		return NewAuthorizerAuthenticator(cfg, redirectURL)
	}
	return nil, fmt.Errorf("unsupported AUTH_MODE: %s", cfg.AuthMode)
}

// AuthorizerAuthenticator validates access tokens with an Authorizer instance
type AuthorizerAuthenticator struct {
	client *authorizer.AuthorizerClient
}

// NewAuthorizerAuthenticator pings the Authorizer service and creates a client
func NewAuthorizerAuthenticator(cfg *config.Config, redirectURL string) (*AuthorizerAuthenticator, error) {
	if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
		return nil, fmt.Errorf("authorizer ping failed: %w", err)
	}

	zap.L().Info("initializing authorizer",
		zap.String("authorizerURL", cfg.AuthzURL),
		zap.String("clientID", cfg.AuthzClientID),
		zap.String("redirectURL", redirectURL),
	)

	client, err := authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}
	return &AuthorizerAuthenticator{client: client}, nil
}

// Authenticate validates an access token and returns its subject
func (a *AuthorizerAuthenticator) Authenticate(_ context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, types.NewAuthenticationError("missing bearer token")
	}

	res, err := a.client.ValidateJWTToken(&authorizer.ValidateJWTTokenInput{
		TokenType: authorizer.TokenTypeAccessToken,
		Token:     token,
	})
	if err != nil {
		authErr := types.NewAuthenticationError("invalid bearer token")
		authErr.Err = err
		return Identity{}, authErr
	}
	if res == nil || !res.IsValid {
		return Identity{}, types.NewAuthenticationError("invalid bearer token")
	}

	sub, _ := res.Claims["sub"].(string)
	if sub == "" {
		return Identity{}, types.NewAuthenticationError("token has no subject")
	}
	return Identity{UserID: sub}, nil
}

// JWTAuthenticator validates HS256 tokens signed with a shared secret
type JWTAuthenticator struct {
	secret []byte
}

// NewJWTAuthenticator returns a JWTAuthenticator for secret
func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret)}
}

// Authenticate validates the token signature and expiry and returns its subject
func (a *JWTAuthenticator) Authenticate(_ context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, types.NewAuthenticationError("missing bearer token")
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		msg := "invalid bearer token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "bearer token expired"
		}
		return Identity{}, types.NewAuthenticationError("%s", msg)
	}
	if !parsed.Valid || claims.Subject == "" {
		return Identity{}, types.NewAuthenticationError("token has no subject")
	}
	return Identity{UserID: claims.Subject}, nil
}
