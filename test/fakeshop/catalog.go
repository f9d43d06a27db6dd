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

//nolint:err113 // dynamic errors acceptable in test code
package fakeshop

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spjmurray/go-util/pkg/set"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maximumLimit = 100
)

// productCount must be called with the lock held.
func (s *Server) productCount(categoryID int64) int {
	var count int

	for _, p := range s.products {
		if slices.Contains(p.categoryIDs, categoryID) {
			count++
		}
	}

	return count
}

// categoryResponse must be called with the lock held.
func (s *Server) categoryResponse(c *category) categoryResponse {
	return categoryResponse{
		ID:           c.id,
		UUID:         c.uuid,
		Name:         c.name,
		Description:  c.description,
		ProductCount: s.productCount(c.id),
	}
}

// productResponse must be called with the lock held.
func (s *Server) productResponse(p *product) productResponse {
	categories := make([]categoryResponse, 0, len(p.categoryIDs))

	for _, id := range p.categoryIDs {
		if c, ok := s.categories[id]; ok {
			categories = append(categories, s.categoryResponse(c))
		}
	}

	return productResponse{
		ID:          p.id,
		UUID:        p.uuid,
		Name:        p.name,
		Description: p.description,
		Price:       p.price.StringFixed(2),
		Stock:       p.stock,
		Categories:  categories,
		CreatedAt:   p.createdAt.Format(time.RFC3339),
		UpdatedAt:   p.updatedAt.Format(time.RFC3339),
	}
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	out := make([]categoryResponse, 0, len(s.categories))

	for _, id := range slices.Sorted(maps.Keys(s.categories)) {
		out = append(out, s.categoryResponse(s.categories[id]))
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid category ID")
	if !ok {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	c, ok := s.categories[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}

	writeJSON(w, http.StatusOK, s.categoryResponse(c))
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var request createCategoryRequest
	if !decodeValid(w, r, &request, "Invalid category data") {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.nextCategoryID++

	c := &category{
		id:          s.nextCategoryID,
		uuid:        uuid.NewString(),
		name:        request.Name,
		description: request.Description,
	}

	s.categories[c.id] = c

	writeJSON(w, http.StatusCreated, s.categoryResponse(c))
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid category ID")
	if !ok {
		return
	}

	var request updateCategoryRequest
	if !decodeValid(w, r, &request, "Invalid category data") {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	c, ok := s.categories[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}

	if request.Name != nil {
		c.name = *request.Name
	}

	if request.Description != nil {
		c.description = request.Description
	}

	writeJSON(w, http.StatusOK, s.categoryResponse(c))
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid category ID")
	if !ok {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.categories[id]; !ok {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}

	delete(s.categories, id)

	for _, p := range s.products {
		p.categoryIDs = slices.DeleteFunc(p.categoryIDs, func(x int64) bool { return x == id })
	}

	w.WriteHeader(http.StatusNoContent)
}

// resolveCategories deduplicates the requested IDs and checks they all
// exist, it must be called with the lock held.
func (s *Server) resolveCategories(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one category is required", ErrInvalidProductData)
	}

	requested := set.New[int64](ids...)
	known := set.New[int64](slices.Collect(maps.Keys(s.categories))...)

	for id := range requested.Difference(known).All() {
		return nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, id)
	}

	return slices.Sorted(requested.All()), nil
}

func writeProductError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, "Price must be greater than 0")
	case errors.Is(err, ErrInvalidStock):
		writeError(w, http.StatusBadRequest, "Stock cannot be negative")
	default:
		writeError(w, http.StatusBadRequest, "Invalid product data")
	}
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var request createProductRequest
	if !decodeValid(w, r, &request, "Invalid product data") {
		return
	}

	if err := request.check(); err != nil {
		writeProductError(w, err)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	categoryIDs, err := s.resolveCategories(request.CategoryIDs)
	if err != nil {
		writeProductError(w, err)
		return
	}

	now := time.Now().UTC()

	s.nextProductID++

	p := &product{
		id:          s.nextProductID,
		uuid:        uuid.NewString(),
		name:        strings.TrimSpace(request.Name),
		description: request.Description,
		price:       *request.Price,
		stock:       request.Stock,
		categoryIDs: categoryIDs,
		createdAt:   now,
		updatedAt:   now,
	}

	s.products[p.id] = p

	writeJSON(w, http.StatusCreated, s.productResponse(p))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid product ID")
	if !ok {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	p, ok := s.products[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	writeJSON(w, http.StatusOK, s.productResponse(p))
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid product ID")
	if !ok {
		return
	}

	var request updateProductRequest
	if !decodeValid(w, r, &request, "Invalid product data") {
		return
	}

	if err := request.check(); err != nil {
		writeProductError(w, err)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	p, ok := s.products[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	if request.CategoryIDs != nil {
		categoryIDs, err := s.resolveCategories(request.CategoryIDs)
		if err != nil {
			writeProductError(w, err)
			return
		}

		p.categoryIDs = categoryIDs
	}

	if request.Name != nil {
		p.name = strings.TrimSpace(*request.Name)
	}

	if request.Description != nil {
		p.description = request.Description
	}

	if request.Price != nil {
		p.price = *request.Price
	}

	if request.Stock != nil {
		p.stock = *request.Stock
	}

	p.updatedAt = time.Now().UTC()

	writeJSON(w, http.StatusOK, s.productResponse(p))
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid product ID")
	if !ok {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.products[id]; !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	delete(s.products, id)

	w.WriteHeader(http.StatusNoContent)
}

type productFilter struct {
	page      int
	limit     int
	minPrice  *decimal.Decimal
	maxPrice  *decimal.Decimal
	sortBy    string
	sortOrder string
}

func positiveInt(values url.Values, key string, defaultValue int) (int, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}

	i, err := strconv.Atoi(value)
	if err != nil || i < 1 {
		return 0, fmt.Errorf("invalid %s", key)
	}

	return i, nil
}

func optionalDecimal(values url.Values, key string) (*decimal.Decimal, error) {
	value := values.Get(key)
	if value == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}

	return &d, nil
}

func parseProductFilter(values url.Values) (*productFilter, error) {
	page, err := positiveInt(values, "page", defaultPage)
	if err != nil {
		return nil, err
	}

	limit, err := positiveInt(values, "limit", defaultLimit)
	if err != nil {
		return nil, err
	}

	minPrice, err := optionalDecimal(values, "min_price")
	if err != nil {
		return nil, err
	}

	maxPrice, err := optionalDecimal(values, "max_price")
	if err != nil {
		return nil, err
	}

	limit = min(limit, maximumLimit)

	// The page offset must stay representable.
	if page > math.MaxInt/limit {
		return nil, fmt.Errorf("invalid page")
	}

	filter := &productFilter{
		page:      page,
		limit:     limit,
		minPrice:  minPrice,
		maxPrice:  maxPrice,
		sortBy:    cmp.Or(values.Get("sort_by"), "id"),
		sortOrder: cmp.Or(values.Get("sort_order"), "asc"),
	}

	if !slices.Contains([]string{"id", "name", "price", "created_at"}, filter.sortBy) {
		return nil, fmt.Errorf("invalid sort_by")
	}

	if filter.sortOrder != "asc" && filter.sortOrder != "desc" {
		return nil, fmt.Errorf("invalid sort_order")
	}

	return filter, nil
}

func (f *productFilter) match(p *product) bool {
	if f.minPrice != nil && p.price.LessThan(*f.minPrice) {
		return false
	}

	return f.maxPrice == nil || !p.price.GreaterThan(*f.maxPrice)
}

func (f *productFilter) compare(a, b *product) int {
	var result int

	switch f.sortBy {
	case "name":
		result = cmp.Compare(a.name, b.name)
	case "price":
		result = a.price.Cmp(b.price)
	case "created_at":
		result = a.createdAt.Compare(b.createdAt)
	}

	// IDs break ties so pagination is stable.
	result = cmp.Or(result, cmp.Compare(a.id, b.id))

	if f.sortOrder == "desc" {
		return -result
	}

	return result
}

// page must be called with the lock held.
func (s *Server) page(filter *productFilter, include func(*product) bool) productsResponse {
	var matched []*product

	for _, p := range s.products {
		if include(p) && filter.match(p) {
			matched = append(matched, p)
		}
	}

	slices.SortFunc(matched, filter.compare)

	out := productsResponse{
		Products: []productResponse{},
		Total:    len(matched),
		Page:     filter.page,
		Limit:    filter.limit,
	}

	start := (filter.page - 1) * filter.limit
	if start >= len(matched) {
		return out
	}

	for _, p := range matched[start:min(start+filter.limit, len(matched))] {
		out.Products = append(out.Products, s.productResponse(p))
	}

	return out
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	writeJSON(w, http.StatusOK, s.page(filter, func(*product) bool { return true }))
}

func (s *Server) listProductsByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid category ID")
	if !ok {
		return
	}

	filter, err := parseProductFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.categories[id]; !ok {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}

	writeJSON(w, http.StatusOK, s.page(filter, func(p *product) bool {
		return slices.Contains(p.categoryIDs, id)
	}))
}
