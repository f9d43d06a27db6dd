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
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"k8s.io/utils/ptr"
)

const (
	TestUserPassword = "testpassword123"
	TestUserName     = "Test User"
)

const lowercaseLetters = "abcdefghijklmnopqrstuvwxyz"

func randomLetters(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = lowercaseLetters[rand.IntN(len(lowercaseLetters))] //nolint:gosec // uniqueness, not secrecy
	}

	return string(out)
}

// UniqueEmail combines the current time in seconds with a short random
// suffix. Collisions are improbable, not impossible.
func UniqueEmail() string {
	return fmt.Sprintf("test%d%s@example.com", time.Now().Unix(), randomLetters(4))
}

// GenerateTestName returns a name unlikely to clash with earlier runs.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s %s", prefix, randomHex(4))
}

// UserPayloadBuilder builds registration payloads for testing.
type UserPayloadBuilder struct {
	payload RegisterRequest
}

// NewUserPayload creates a builder for a fresh user with defaults.
func NewUserPayload() *UserPayloadBuilder {
	return &UserPayloadBuilder{
		payload: RegisterRequest{
			Email:    UniqueEmail(),
			Password: TestUserPassword,
			Name:     ptr.To(TestUserName),
		},
	}
}

func (b *UserPayloadBuilder) WithEmail(email string) *UserPayloadBuilder {
	b.payload.Email = email
	return b
}

func (b *UserPayloadBuilder) WithPassword(password string) *UserPayloadBuilder {
	b.payload.Password = password
	return b
}

func (b *UserPayloadBuilder) WithName(name string) *UserPayloadBuilder {
	b.payload.Name = ptr.To(name)
	return b
}

func (b *UserPayloadBuilder) WithPhone(phone string) *UserPayloadBuilder {
	b.payload.Phone = ptr.To(phone)
	return b
}

func (b *UserPayloadBuilder) Build() RegisterRequest {
	return b.payload
}

// NewTestUser returns the default test user with a unique email.
func NewTestUser() RegisterRequest {
	return NewUserPayload().Build()
}

// CategoryPayloadBuilder builds category payloads for testing.
type CategoryPayloadBuilder struct {
	payload CategoryRequest
}

func NewCategoryPayload() *CategoryPayloadBuilder {
	return &CategoryPayloadBuilder{
		payload: CategoryRequest{
			Name:        ptr.To(GenerateTestName("Test Category")),
			Description: ptr.To("Test description"),
		},
	}
}

func (b *CategoryPayloadBuilder) WithName(name string) *CategoryPayloadBuilder {
	b.payload.Name = ptr.To(name)
	return b
}

// WithoutName omits the name entirely, as opposed to sending an empty one.
func (b *CategoryPayloadBuilder) WithoutName() *CategoryPayloadBuilder {
	b.payload.Name = nil
	return b
}

func (b *CategoryPayloadBuilder) WithDescription(description string) *CategoryPayloadBuilder {
	b.payload.Description = ptr.To(description)
	return b
}

func (b *CategoryPayloadBuilder) WithoutDescription() *CategoryPayloadBuilder {
	b.payload.Description = nil
	return b
}

func (b *CategoryPayloadBuilder) Build() CategoryRequest {
	return b.payload
}

// ProductPayloadBuilder builds product payloads for testing.
type ProductPayloadBuilder struct {
	payload ProductRequest
}

// NewProductPayload creates a product in the given categories with defaults.
func NewProductPayload(categoryIDs ...int64) *ProductPayloadBuilder {
	return &ProductPayloadBuilder{
		payload: ProductRequest{
			Name:        ptr.To(GenerateTestName("Test Product")),
			Description: ptr.To("Test Description"),
			Price:       ptr.To("99.99"),
			Stock:       ptr.To(10),
			CategoryIDs: categoryIDs,
		},
	}
}

func (b *ProductPayloadBuilder) WithName(name string) *ProductPayloadBuilder {
	b.payload.Name = ptr.To(name)
	return b
}

func (b *ProductPayloadBuilder) WithDescription(description string) *ProductPayloadBuilder {
	b.payload.Description = ptr.To(description)
	return b
}

func (b *ProductPayloadBuilder) WithoutDescription() *ProductPayloadBuilder {
	b.payload.Description = nil
	return b
}

// WithPrice sets the raw price string, which need not be a valid decimal.
func (b *ProductPayloadBuilder) WithPrice(price string) *ProductPayloadBuilder {
	b.payload.Price = ptr.To(price)
	return b
}

// WithPriceDecimal sets the price formatted with two decimal places, the
// way the server renders prices.
func (b *ProductPayloadBuilder) WithPriceDecimal(price decimal.Decimal) *ProductPayloadBuilder {
	return b.WithPrice(price.StringFixed(2))
}

func (b *ProductPayloadBuilder) WithStock(stock int) *ProductPayloadBuilder {
	b.payload.Stock = ptr.To(stock)
	return b
}

func (b *ProductPayloadBuilder) WithCategoryIDs(categoryIDs ...int64) *ProductPayloadBuilder {
	b.payload.CategoryIDs = categoryIDs
	return b
}

func (b *ProductPayloadBuilder) Build() ProductRequest {
	return b.payload
}
