// session_test.go
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

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle(t *testing.T) {
	s := New()
	assert.Equal(t, Anonymous, s.State())

	require.NoError(t, s.Begin())
	assert.Equal(t, Authenticating, s.State())

	require.NoError(t, s.Complete("user-1"))
	assert.Equal(t, Authenticated, s.State())
	assert.Equal(t, "user-1", s.UserID())

	s.SignOut()
	assert.Equal(t, Anonymous, s.State())
	assert.Empty(t, s.UserID())
}

func TestAlreadyAuthenticatedGuard(t *testing.T) {
	s := New()
	require.NoError(t, s.Begin())
	require.NoError(t, s.Complete("user-1"))

	assert.ErrorIs(t, s.Begin(), ErrAlreadyAuthenticated)
	assert.ErrorIs(t, s.Complete("user-2"), ErrAlreadyAuthenticated)
	assert.Equal(t, "user-1", s.UserID())
}

func TestFailedAuthentication(t *testing.T) {
	s := New()
	require.NoError(t, s.Begin())
	require.NoError(t, s.Fail())
	assert.Equal(t, Anonymous, s.State())

	// retry after failure is allowed
	require.NoError(t, s.Begin())
}

func TestInvalidTransitions(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.Complete("user-1"), ErrInvalidTransition)
	assert.ErrorIs(t, s.Fail(), ErrInvalidTransition)

	require.NoError(t, s.Begin())
	assert.ErrorIs(t, s.Begin(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Complete(""), ErrInvalidTransition)
	assert.Equal(t, Authenticating, s.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "authenticating", Authenticating.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "State(7)", State(7).String())
}
