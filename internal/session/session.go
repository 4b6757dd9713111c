// session.go
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

// Package session models the lifecycle of a caller's authentication session
// as explicit state transitions.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// State is a session lifecycle state
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrAlreadyAuthenticated guards against a second sign-in on a live session.
	ErrAlreadyAuthenticated = errors.New("session already authenticated")
	// ErrInvalidTransition is returned for any transition not in the lifecycle.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// Session is safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	state  State
	userID string
}

// New returns an anonymous session
func New() *Session {
	return &Session{state: Anonymous}
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UserID returns the resolved identity, or "" unless authenticated.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Begin moves anonymous -> authenticating.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Anonymous:
		s.state = Authenticating
		return nil
	case Authenticated:
		return ErrAlreadyAuthenticated
	}
	return fmt.Errorf("%w: begin from %s", ErrInvalidTransition, s.state)
}

// Complete moves authenticating -> authenticated with the given identity.
func (s *Session) Complete(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Authenticating {
		if s.state == Authenticated {
			return ErrAlreadyAuthenticated
		}
		return fmt.Errorf("%w: complete from %s", ErrInvalidTransition, s.state)
	}
	if userID == "" {
		return fmt.Errorf("%w: empty identity", ErrInvalidTransition)
	}
	s.state = Authenticated
	s.userID = userID
	return nil
}

// Fail moves authenticating -> anonymous.
func (s *Session) Fail() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Authenticating {
		return fmt.Errorf("%w: fail from %s", ErrInvalidTransition, s.state)
	}
	s.state = Anonymous
	return nil
}

// SignOut returns to anonymous from any state. Signing out of an anonymous
// session is a no-op.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Anonymous
	s.userID = ""
}
