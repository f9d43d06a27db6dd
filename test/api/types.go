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

package api

import (
	"strconv"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string  `json:"email,omitempty"`
	Password string  `json:"password,omitempty"`
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// Credentials returns the login request matching a registration.
func (r RegisterRequest) Credentials() LoginRequest {
	return LoginRequest{
		Email:    r.Email,
		Password: r.Password,
	}
}

type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type UserProfile struct {
	UUID  string  `json:"uuid"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Role  string  `json:"role"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// CategoryRequest is used for both create and update, the server decides
// which fields are mandatory.
type CategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type Category struct {
	ID           int64   `json:"id"`
	UUID         string  `json:"uuid"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	ProductCount int     `json:"product_count"`
}

// IDString formats the ID for use in endpoint paths.
func (c *Category) IDString() string {
	return strconv.FormatInt(c.ID, 10)
}

// ProductRequest is used for both create and update. Price is a decimal
// string, stock a pointer so zero can be sent explicitly.
type ProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *string `json:"price,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
	CategoryIDs []int64 `json:"category_ids,omitempty"`
}

type Product struct {
	ID          int64      `json:"id"`
	UUID        string     `json:"uuid"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Price       string     `json:"price"`
	Stock       int        `json:"stock"`
	Categories  []Category `json:"categories"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

// IDString formats the ID for use in endpoint paths.
func (p *Product) IDString() string {
	return strconv.FormatInt(p.ID, 10)
}

type ProductList struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
