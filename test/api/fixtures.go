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

//nolint:revive,staticcheck,err113 // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/goshop/apitest/test/api/seed"
)

var (
	// ErrUnexpectedStatus is wrapped by fixture errors caused by the server
	// answering with a status the fixture cannot work with.
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

func unexpectedStatus(operation string, resp *Response) error {
	return fmt.Errorf("%w: %s returned %s", ErrUnexpectedStatus, operation, resp)
}

// Decode unmarshals a response body, failing the current spec if it can't.
func Decode[T any](resp *Response) *T {
	var out T

	ExpectWithOffset(1, resp.JSON(&out)).To(Succeed())

	return &out
}

// LoginForToken logs in and returns the session, anything but 200 is an error.
func LoginForToken(ctx context.Context, client *APIClient, credentials LoginRequest) (*AuthResponse, error) {
	resp, err := client.Anonymous().Login(ctx, credentials)
	if err != nil {
		return nil, fmt.Errorf("logging in as %s: %w", credentials.Email, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus("login as "+credentials.Email, resp)
	}

	var auth AuthResponse
	if err := resp.JSON(&auth); err != nil {
		return nil, err
	}

	return &auth, nil
}

// RegisterOrLogin registers the user, falling back to a login with the same
// credential when the email is already taken.
func RegisterOrLogin(ctx context.Context, client *APIClient, user RegisterRequest) (*AuthResponse, error) {
	resp, err := client.Anonymous().Register(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("registering %s: %w", user.Email, err)
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		var auth AuthResponse
		if err := resp.JSON(&auth); err != nil {
			return nil, err
		}

		return &auth, nil
	case http.StatusConflict:
		auth, err := LoginForToken(ctx, client, user.Credentials())
		if err != nil {
			return nil, fmt.Errorf("failed to login existing user: %w", err)
		}

		return auth, nil
	default:
		return nil, unexpectedStatus("registration of "+user.Email, resp)
	}
}

// NewAuthenticatedClient registers a fresh user and returns a client bound
// to its token. The client is a copy private to the caller. Any failure
// other than an email conflict means the harness and the server disagree
// on the contract, so the spec fails rather than skips.
func NewAuthenticatedClient(ctx context.Context, base *APIClient) (*APIClient, RegisterRequest) {
	user := NewTestUser()

	auth, err := RegisterOrLogin(ctx, base, user)
	if err != nil {
		fail(fmt.Sprintf("Registration failed: %v", err), 1)
	}

	return base.WithAuthToken(auth.Token), user
}

// AcquireAdminToken tries, in order, an explicitly configured token, a
// login with the admin credential, and if a database is configured a
// bootstrap that registers the admin and promotes it in SQL.
func AcquireAdminToken(ctx context.Context, client *APIClient, config *TestConfig) (string, error) {
	if config.AdminToken != "" {
		return config.AdminToken, nil
	}

	credentials := LoginRequest{
		Email:    config.AdminEmail,
		Password: config.AdminPassword,
	}

	auth, loginErr := LoginForToken(ctx, client, credentials)
	if loginErr == nil {
		return auth.Token, nil
	}

	if config.AdminDatabaseURL == "" {
		return "", fmt.Errorf("admin login failed and ADMIN_DATABASE_URL is not set: %w", loginErr)
	}

	client.Logf("Admin login failed, bootstrapping %s via the database: %v\n", config.AdminEmail, loginErr)

	admin := NewUserPayload().
		WithEmail(config.AdminEmail).
		WithPassword(config.AdminPassword).
		WithName("Administrator").
		Build()

	if _, err := RegisterOrLogin(ctx, client, admin); err != nil {
		return "", fmt.Errorf("registering admin: %w", err)
	}

	if err := promoteToRole(ctx, config.AdminDatabaseURL, config.AdminEmail, RoleAdmin); err != nil {
		return "", fmt.Errorf("promoting admin: %w", err)
	}

	// The role is baked into the token, so log in again after promotion.
	auth, err := LoginForToken(ctx, client, credentials)
	if err != nil {
		return "", fmt.Errorf("logging in bootstrapped admin: %w", err)
	}

	if auth.User.Role != RoleAdmin {
		return "", fmt.Errorf("bootstrapped admin %s has role %q", config.AdminEmail, auth.User.Role)
	}

	return auth.Token, nil
}

// processCache memoizes a fixture for the lifetime of the test process.
// Parallel specs in the same process share a single computation.
type processCache[T any] struct {
	lock  sync.Mutex
	done  bool
	value T
	err   error
}

func (c *processCache[T]) get(compute func() (T, error)) (T, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if !c.done {
		c.value, c.err = compute()
		c.done = true
	}

	return c.value, c.err
}

// reset forgets the cached value, used by the harness' own tests.
func (c *processCache[T]) reset() {
	c.lock.Lock()
	defer c.lock.Unlock()

	var zero T

	c.done = false
	c.value = zero
	c.err = nil
}

//nolint:gochecknoglobals
var (
	adminTokenCache   processCache[string]
	testCategoryCache processCache[*Category]

	// promoteToRole grants the bootstrapped admin its role, replaced by the
	// harness' own tests.
	promoteToRole = seed.PromoteToRole

	// skip and fail end the current spec, the harness' own tests record
	// which one a fixture chose.
	skip = Skip
	fail = Fail
)

// AdminToken returns the process scoped admin token, or the reason it is
// unavailable.
func AdminToken(ctx context.Context, client *APIClient, config *TestConfig) (string, error) {
	return adminTokenCache.get(func() (string, error) {
		token, err := AcquireAdminToken(ctx, client, config)
		if err != nil {
			GinkgoWriter.Printf("Admin token not available: %v\n", err)
		}

		return token, err
	})
}

// RequireAdminToken returns an admin client, skipping the current spec when
// no admin token can be had. It never fails the spec.
func RequireAdminToken(ctx context.Context, client *APIClient, config *TestConfig) *APIClient {
	token, err := AdminToken(ctx, client, config)
	if err != nil || token == "" {
		skip(fmt.Sprintf("Admin token not available: %v", err), 1)
	}

	return client.WithAuthToken(token)
}

// TestCategory returns the process scoped category shared by product specs,
// it must be treated as read only. The spec is skipped when it can't be
// created.
func TestCategory(ctx context.Context, client *APIClient, config *TestConfig) *Category {
	admin := RequireAdminToken(ctx, client, config)

	category, err := testCategoryCache.get(func() (*Category, error) {
		resp, err := admin.CreateCategory(ctx, NewCategoryPayload().
			WithName(GenerateTestName("Test Electronics")).
			WithDescription("Test category for integration tests").
			Build())
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusCreated {
			return nil, unexpectedStatus("test category creation", resp)
		}

		var category Category
		if err := resp.JSON(&category); err != nil {
			return nil, err
		}

		GinkgoWriter.Printf("Created test category with ID: %d\n", category.ID)

		return &category, nil
	})
	if err != nil {
		skip(fmt.Sprintf("Failed to create test category: %v", err), 1)
	}

	return category
}

// deleteQuietly is the cleanup half of the create fixtures, a resource
// already deleted by the spec itself is fine.
func deleteQuietly(kind, id string, remove func() (*Response, error)) {
	resp, err := remove()

	switch {
	case err != nil:
		GinkgoWriter.Printf("Warning: Failed to delete %s %s: %v\n", kind, id, err)
	case resp.StatusCode == http.StatusNoContent:
		GinkgoWriter.Printf("Successfully deleted %s: %s\n", kind, id)
	case resp.StatusCode == http.StatusNotFound:
	default:
		GinkgoWriter.Printf("Warning: Failed to delete %s %s: %s\n", kind, id, resp)
	}
}

// CreateCategoryWithCleanup creates a category with the admin client and
// schedules its deletion, this runs whether the spec passes or fails.
func CreateCategoryWithCleanup(ctx context.Context, admin *APIClient, payload CategoryRequest) *Category {
	resp, err := admin.CreateCategory(ctx, payload)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	ExpectWithOffset(1, resp.StatusCode).To(Equal(http.StatusCreated), resp.String())

	category := Decode[Category](resp)

	GinkgoWriter.Printf("Created category with ID: %d\n", category.ID)

	DeferCleanup(func(ctx SpecContext) {
		deleteQuietly("category", category.IDString(), func() (*Response, error) {
			return admin.DeleteCategory(ctx, category.IDString())
		})
	})

	return category
}

// CreateProductWithCleanup creates a product with the admin client and
// schedules its deletion.
func CreateProductWithCleanup(ctx context.Context, admin *APIClient, payload ProductRequest) *Product {
	resp, err := admin.CreateProduct(ctx, payload)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	ExpectWithOffset(1, resp.StatusCode).To(Equal(http.StatusCreated), resp.String())

	product := Decode[Product](resp)

	GinkgoWriter.Printf("Created product with ID: %d\n", product.ID)

	DeferCleanup(func(ctx SpecContext) {
		deleteQuietly("product", product.IDString(), func() (*Response, error) {
			return admin.DeleteProduct(ctx, product.IDString())
		})
	})

	return product
}
