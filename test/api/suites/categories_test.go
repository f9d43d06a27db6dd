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
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/goshop/apitest/test/api"
)

const (
	unknownID = "99999"
	invalidID = "invalid"
)

var _ = Describe("Categories", func() {
	Context("When listing categories", func() {
		It("should return a JSON array", func() {
			resp, err := client.ListCategories(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.String())

			Expect(*api.Decode[[]api.Category](resp)).NotTo(BeNil())
		})

		It("should include every field for each category", func() {
			admin := api.RequireAdminToken(ctx, client, config)
			api.CreateCategoryWithCleanup(ctx, admin, api.NewCategoryPayload().Build())

			resp, err := client.ListCategories(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.String())

			var categories []map[string]any
			Expect(resp.JSON(&categories)).To(Succeed())
			Expect(categories).NotTo(BeEmpty())

			for _, category := range categories {
				Expect(category).To(HaveKey("id"))
				Expect(category).To(HaveKey("uuid"))
				Expect(category).To(HaveKey("name"))
				Expect(category).To(HaveKey("description"))
				Expect(category).To(HaveKey("product_count"))
			}
		})
	})

	Context("When reading a category", func() {
		It("should return the category that was created", func() {
			admin := api.RequireAdminToken(ctx, client, config)
			payload := api.NewCategoryPayload().Build()
			created := api.CreateCategoryWithCleanup(ctx, admin, payload)

			resp, err := client.GetCategory(ctx, created.IDString())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.String())

			category := api.Decode[api.Category](resp)
			Expect(category.ID).To(Equal(created.ID))
			Expect(category.UUID).To(Equal(created.UUID))
			Expect(category.Name).To(Equal(*payload.Name))
			Expect(category.Description).To(Equal(payload.Description))
		})

		It("should return not found for an unknown ID", func() {
			resp, err := client.GetCategory(ctx, unknownID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound), resp.String())
		})

		It("should reject a malformed ID", func() {
			resp, err := client.GetCategory(ctx, invalidID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest), resp.String())
		})
	})

	Context("When creating a category", func() {
		It("should create it with no products", func() {
			admin := api.RequireAdminToken(ctx, client, config)
			payload := api.NewCategoryPayload().Build()

			category := api.CreateCategoryWithCleanup(ctx, admin, payload)
			Expect(category.ID).To(BeNumerically(">", 0))
			Expect(category.UUID).NotTo(BeEmpty())
			Expect(category.Name).To(Equal(*payload.Name))
			Expect(category.Description).To(Equal(payload.Description))
			Expect(category.ProductCount).To(BeZero())
		})

		It("should require authentication", func() {
			resp, err := client.Anonymous().CreateCategory(ctx, api.NewCategoryPayload().Build())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized), resp.String())
		})

		Describe("Given invalid category data", func() {
			It("should reject an empty name", func() {
				admin := api.RequireAdminToken(ctx, client, config)

				resp, err := admin.CreateCategory(ctx, api.NewCategoryPayload().WithName("").Build())
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest), resp.String())
			})

			It("should reject a missing name", func() {
				admin := api.RequireAdminToken(ctx, client, config)

				resp, err := admin.CreateCategory(ctx, api.NewCategoryPayload().WithoutName().Build())
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest), resp.String())
			})
		})
	})

	Context("When updating a category", func() {
		It("should apply the new name and description", func() {
			admin := api.RequireAdminToken(ctx, client, config)
			category := api.CreateCategoryWithCleanup(ctx, admin, api.NewCategoryPayload().Build())

			update := api.NewCategoryPayload().
				WithName(api.GenerateTestName("Updated Category")).
				WithDescription("Updated description").
				Build()

			resp, err := admin.UpdateCategory(ctx, category.IDString(), update)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.String())

			updated := api.Decode[api.Category](resp)
			Expect(updated.ID).To(Equal(category.ID))
			Expect(updated.Name).To(Equal(*update.Name))
			Expect(updated.Description).To(HaveValue(Equal("Updated description")))
		})

		It("should return not found for an unknown ID", func() {
			admin := api.RequireAdminToken(ctx, client, config)

			resp, err := admin.UpdateCategory(ctx, unknownID, api.NewCategoryPayload().Build())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound), resp.String())
		})

		It("should require authentication", func() {
			resp, err := client.Anonymous().UpdateCategory(ctx, "1", api.NewCategoryPayload().Build())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized), resp.String())
		})
	})

	Context("When deleting a category", func() {
		It("should no longer be readable", func() {
			admin := api.RequireAdminToken(ctx, client, config)
			category := api.CreateCategoryWithCleanup(ctx, admin, api.NewCategoryPayload().Build())

			resp, err := admin.DeleteCategory(ctx, category.IDString())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent), resp.String())

			resp, err = client.GetCategory(ctx, category.IDString())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound), resp.String())
		})

		It("should return not found for an unknown ID", func() {
			admin := api.RequireAdminToken(ctx, client, config)

			resp, err := admin.DeleteCategory(ctx, unknownID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound), resp.String())
		})

		It("should require authentication", func() {
			resp, err := client.Anonymous().DeleteCategory(ctx, "1")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized), resp.String())
		})

		It("should reject a malformed ID", func() {
			admin := api.RequireAdminToken(ctx, client, config)

			resp, err := admin.DeleteCategory(ctx, invalidID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest), resp.String())
		})
	})
})
