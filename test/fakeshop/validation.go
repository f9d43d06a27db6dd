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
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProductData = errors.New("invalid product data")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidStock       = errors.New("invalid stock value")
	ErrCategoryNotFound   = errors.New("category not found")
)

//nolint:gochecknoglobals
var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	minimumPrice = decimal.RequireFromString("0.01")
	maximumPrice = decimal.RequireFromString("999999999.99")
)

// decodeValid decodes the body and checks its struct tags, answering 400
// with the given message on a tag violation.
func decodeValid(w http.ResponseWriter, r *http.Request, into any, message string) bool {
	if !decodeBody(w, r, into) {
		return false
	}

	if err := validate.Struct(into); err != nil {
		writeError(w, http.StatusBadRequest, message)
		return false
	}

	return true
}

func checkProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidProductData
	}

	return nil
}

// checkPrice accepts at most two decimal places so prices round trip
// through their string form exactly.
func checkPrice(price decimal.Decimal) error {
	if price.LessThan(minimumPrice) || price.GreaterThan(maximumPrice) {
		return ErrInvalidPrice
	}

	if price.Exponent() < -2 {
		return ErrInvalidPrice
	}

	return nil
}

// checkStock applies to creation only, an update may zero the stock.
func checkStock(stock int) error {
	if stock <= 0 {
		return ErrInvalidStock
	}

	return nil
}

func (r *createProductRequest) check() error {
	if err := checkProductName(r.Name); err != nil {
		return err
	}

	if err := checkPrice(*r.Price); err != nil {
		return err
	}

	return checkStock(r.Stock)
}

func (r *updateProductRequest) check() error {
	if r.Name != nil {
		if err := checkProductName(*r.Name); err != nil {
			return err
		}
	}

	if r.Price != nil {
		return checkPrice(*r.Price)
	}

	return nil
}
