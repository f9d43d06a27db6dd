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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package suites

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/goshop/apitest/test/api"

	"k8s.io/utils/ptr"
)

var _ = Describe("Products", func() {
	Context("When listing products", func() {
		It("should return a page of products", func() {
			resp, err := client.ListProducts(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.String())

			list := api.Decode[api.ProductList](resp)
			Expect(list.Products).NotTo(BeNil())
			Expect(list.Total).To(BeNumerically(">=", 0))
		})

		It("should echo the pagination parameters", func() {
			resp, err := client.ListProducts(ctx, &api.ProductQuery{
				Page:  ptr.To(1),
				Limit: ptr.To(5),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.String())

			list := api.Decode[api.ProductList](resp)
			Expect(list.Page).To(Equal(1))
			Expect(list.Limit).To(Equal(5))
			Expect(len(list.Products)).To(BeNumerically("<=", 5))
		})

		It("should accept price filters and sorting", func() {
			resp, err := client.ListProducts(ctx, &api.ProductQuery{
				MinPrice:  ptr.To("10.00"),
				MaxPrice:  ptr.To("100.00"),
				SortBy:    ptr.To("price"),
				SortOrder: ptr.To("asc"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.String())
		})
	})

	Context("When creating a product", func() {
		It("should create it in the given category", func() {
			admin := api.RequireAdminToken(ctx, client, config)
			category := api.TestCategory(ctx, client, config)
			payload := api.NewProductPayload(category.ID).Build()

			product := api.CreateProductWithCleanup(ctx, admin, payload)
			Expect(product.ID).To(BeNumerically(">", 0))
			Expect(product.UUID).NotTo(BeEmpty())
			Expect(product.Name).To(Equal(*payload.Name))
			Expect(product.Price).To(Equal("99.99"))
			Expect(product.Stock).To(Equal(10))
			Expect(product.Categories).To(HaveLen(1))
			Expect(product.Categories[0].ID).To(Equal(category.ID))
		})

		It("should require authentication", func() {
			resp, err := client.Anonymous().CreateProduct(ctx, api.NewProductPayload(1).Build())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized), resp.String())
		})

		DescribeTable("should reject invalid product data",
			func(mutate func(*api.ProductPayloadBuilder) *api.ProductPayloadBuilder) {
				admin := api.RequireAdminToken(ctx, client, config)
				category := api.TestCategory(ctx, client, config)

				resp, err := admin.CreateProduct(ctx, mutate(api.NewProductPayload(category.ID)).Build())
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest), resp.String())
			},
			Entry("with an empty name", func(b *api.ProductPayloadBuilder) *api.ProductPayloadBuilder {
				return b.WithName("")
			}),
			Entry("with a blank name", func(b *api.ProductPayloadBuilder) *api.ProductPayloadBuilder {
				return b.WithName("   ")
			}),
			Entry("with a malformed price", func(b *api.ProductPayloadBuilder) *api.ProductPayloadBuilder {
				return b.WithPrice("invalid")
			}),
			Entry("with a negative price", func(b *api.ProductPayloadBuilder) *api.ProductPayloadBuilder {
				return b.WithPrice("-10.00")
			}),
			Entry("with more than two decimal places", func(b *api.ProductPayloadBuilder) *api.ProductPayloadBuilder {
				return b.WithPrice("9.999")
			}),
			Entry("with a price out of range", func(b *api.ProductPayloadBuilder) *api.ProductPayloadBuilder {
				return b.WithPrice("1000000000000")
			}),
			Entry("with negative stock", func(b *api.ProductPayloadBuilder) *api.ProductPayloadBuilder {
				return b.WithStock(-1)
			}),
			Entry("with zero stock", func(b *api.ProductPayloadBuilder) *api.ProductPayloadBuilder {
				return b.WithStock(0)
			}),
			Entry("without categories", func(b *api.ProductPayloadBuilder) *api.ProductPayloadBuilder {
				return b.WithCategoryIDs()
			}),
		)

		It("should return not found for an unknown category", func() {
			admin := api.RequireAdminToken(ctx, client, config)

			resp, err := admin.CreateProduct(ctx, api.NewProductPayload(99999).Build())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound), resp.String())
		})
	})

	Context("When reading a product", func() {
		It("should return the product that was created", func() {
			admin := api.RequireAdminToken(ctx, client, config)
			category := api.TestCategory(ctx, client, config)
			created := api.CreateProductWithCleanup(ctx, admin, api.NewProductPayload(category.ID).Build())

			resp, err := client.GetProduct(ctx, created.IDString())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.String())

			product := api.Decode[api.Product](resp)
			Expect(product.ID).To(Equal(created.ID))
			Expect(product.Name).To(Equal(created.Name))
			Expect(product.Price).To(Equal(created.Price))
		})

		It("should return not found for an unknown ID", func() {
			resp, err := client.GetProduct(ctx, unknownID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound), resp.String())
		})

		It("should reject a malformed ID", func() {
			resp, err := client.GetProduct(ctx, invalidID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest), resp.String())
		})
	})

	Context("When updating a product", func() {
		It("should apply the new name and price", func() {
			admin := api.RequireAdminToken(ctx, client, config)
			category := api.TestCategory(ctx, client, config)
			product := api.CreateProductWithCleanup(ctx, admin, api.NewProductPayload(category.ID).Build())

			update := api.ProductRequest{
				Name:  ptr.To(api.GenerateTestName("Updated Product")),
				Price: ptr.To("149.99"),
			}

			resp, err := admin.UpdateProduct(ctx, product.IDString(), update)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.String())

			updated := api.Decode[api.Product](resp)
			Expect(updated.Name).To(Equal(*update.Name))
			Expect(updated.Price).To(Equal("149.99"))
			Expect(updated.Stock).To(Equal(product.Stock))
		})

		It("should return not found for an unknown ID", func() {
			admin := api.RequireAdminToken(ctx, client, config)

			resp, err := admin.UpdateProduct(ctx, unknownID, api.ProductRequest{
				Name: ptr.To("Updated Product"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound), resp.String())
		})
	})

	Context("When deleting a product", func() {
		It("should no longer be readable", func() {
			admin := api.RequireAdminToken(ctx, client, config)
			category := api.TestCategory(ctx, client, config)
			product := api.CreateProductWithCleanup(ctx, admin, api.NewProductPayload(category.ID).Build())

			resp, err := admin.DeleteProduct(ctx, product.IDString())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent), resp.String())

			resp, err = client.GetProduct(ctx, product.IDString())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound), resp.String())
		})
	})

	Context("When listing products by category", func() {
		It("should return the products in the category", func() {
			admin := api.RequireAdminToken(ctx, client, config)
			category := api.TestCategory(ctx, client, config)
			product := api.CreateProductWithCleanup(ctx, admin, api.NewProductPayload(category.ID).Build())

			resp, err := client.ListProductsByCategory(ctx, category.IDString(), &api.ProductQuery{
				Limit: ptr.To(100),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.String())

			list := api.Decode[api.ProductList](resp)
			Expect(list.Products).NotTo(BeEmpty())
			Expect(list.Products).To(ContainElement(HaveField("ID", product.ID)))
		})
	})
})

type adminCall func(ctx context.Context, anonymous *api.APIClient) (*api.Response, error)

var _ = Describe("Admin authorization", func() {
	DescribeTable("should reject every admin mutation without a token",
		func(call adminCall) {
			resp, err := call(ctx, client.Anonymous())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized), resp.String())
		},
		Entry("create category", adminCall(func(ctx context.Context, c *api.APIClient) (*api.Response, error) {
			return c.CreateCategory(ctx, api.NewCategoryPayload().Build())
		})),
		Entry("update category", adminCall(func(ctx context.Context, c *api.APIClient) (*api.Response, error) {
			return c.UpdateCategory(ctx, "1", api.NewCategoryPayload().Build())
		})),
		Entry("delete category", adminCall(func(ctx context.Context, c *api.APIClient) (*api.Response, error) {
			return c.DeleteCategory(ctx, "1")
		})),
		Entry("create product", adminCall(func(ctx context.Context, c *api.APIClient) (*api.Response, error) {
			return c.CreateProduct(ctx, api.NewProductPayload(1).Build())
		})),
		Entry("update product", adminCall(func(ctx context.Context, c *api.APIClient) (*api.Response, error) {
			return c.UpdateProduct(ctx, "1", api.NewProductPayload(1).Build())
		})),
		Entry("delete product", adminCall(func(ctx context.Context, c *api.APIClient) (*api.Response, error) {
			return c.DeleteProduct(ctx, "1")
		})),
		Entry("with an invalid payload", adminCall(func(ctx context.Context, c *api.APIClient) (*api.Response, error) {
			return c.CreateProduct(ctx, []byte("{not json"))
		})),
	)

	It("should forbid admin mutations for a regular user", func() {
		authenticated, _ := api.NewAuthenticatedClient(ctx, client)

		resp, err := authenticated.CreateCategory(ctx, api.NewCategoryPayload().Build())
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden), resp.String())
	})
})
