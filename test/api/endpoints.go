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
	"fmt"
	"net/url"
)

// Endpoints contains all API endpoint patterns.
//
// IDs are taken as strings so tests can deliberately send malformed values
// such as "invalid".
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// Authentication endpoints.
func (e *Endpoints) Register() string {
	return "/auth/register"
}

func (e *Endpoints) Login() string {
	return "/auth/login"
}

func (e *Endpoints) Profile() string {
	return "/api/v1/profile"
}

// Public catalogue endpoints.
func (e *Endpoints) ListCategories() string {
	return "/categories"
}

func (e *Endpoints) GetCategory(categoryID string) string {
	return fmt.Sprintf("/categories/%s", url.PathEscape(categoryID))
}

func (e *Endpoints) ListProducts() string {
	return "/products"
}

func (e *Endpoints) GetProduct(productID string) string {
	return fmt.Sprintf("/products/%s", url.PathEscape(productID))
}

func (e *Endpoints) ListProductsByCategory(categoryID string) string {
	return fmt.Sprintf("/products/category/%s", url.PathEscape(categoryID))
}

// Admin endpoints.
func (e *Endpoints) CreateCategory() string {
	return "/admin/categories"
}

func (e *Endpoints) UpdateCategory(categoryID string) string {
	return fmt.Sprintf("/admin/categories/%s", url.PathEscape(categoryID))
}

func (e *Endpoints) DeleteCategory(categoryID string) string {
	return fmt.Sprintf("/admin/categories/%s", url.PathEscape(categoryID))
}

func (e *Endpoints) CreateProduct() string {
	return "/admin/products"
}

func (e *Endpoints) UpdateProduct(productID string) string {
	return fmt.Sprintf("/admin/products/%s", url.PathEscape(productID))
}

func (e *Endpoints) DeleteProduct(productID string) string {
	return fmt.Sprintf("/admin/products/%s", url.PathEscape(productID))
}
