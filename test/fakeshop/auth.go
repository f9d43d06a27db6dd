/*
Copyright 2026 the GoShop Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package fakeshop

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

func (u *user) profile() userProfile {
	return userProfile{
		UUID:  u.uuid,
		Email: u.email,
		Name:  u.name,
		Phone: u.phone,
		Role:  u.role,
	}
}

// newSession must be called with the lock held.
func (s *Server) newSession(u *user) authResponse {
	token := uuid.NewString()
	s.sessions[token] = u

	return authResponse{
		Token: token,
		User:  u.profile(),
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var request registerRequest
	if !decodeValid(w, r, &request, "Invalid registration data") {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.users[strings.ToLower(request.Email)]; ok {
		writeError(w, http.StatusConflict, "User with this email already exists")
		return
	}

	u := s.addUser(request.Email, request.Password, request.Name, request.Phone, RoleUser)

	writeJSON(w, http.StatusCreated, s.newSession(u))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if !decodeValid(w, r, &request, "Invalid login data") {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	u, ok := s.users[strings.ToLower(request.Email)]
	if !ok || u.password != request.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, s.newSession(u))
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())

	s.lock.Lock()
	defer s.lock.Unlock()

	writeJSON(w, http.StatusOK, u.profile())
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var request updateProfileRequest
	if !decodeValid(w, r, &request, "Invalid profile data") {
		return
	}

	if request.Name == nil && request.Phone == nil {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	u := userFromContext(r.Context())

	s.lock.Lock()
	defer s.lock.Unlock()

	if request.Name != nil {
		u.name = request.Name
	}

	if request.Phone != nil {
		u.phone = request.Phone
	}

	writeJSON(w, http.StatusOK, u.profile())
}

// SetRole changes the role of an existing user, as an operator would in
// the database. Existing sessions see the change immediately.
func (s *Server) SetRole(email, role string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return false
	}

	u.role = role

	return true
}
