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

	"github.com/oapi-codegen/runtime"
)

// ProductQuery holds the catalogue listing parameters, nil fields are omitted.
type ProductQuery struct {
	Page      *int
	Limit     *int
	MinPrice  *string
	MaxPrice  *string
	SortBy    *string
	SortOrder *string
}

type queryParam struct {
	name  string
	value any
}

// Values encodes the query as form style parameters, a nil query encodes
// to no parameters at all.
func (q *ProductQuery) Values() (url.Values, error) {
	if q == nil {
		return nil, nil
	}

	var params []queryParam

	if q.Page != nil {
		params = append(params, queryParam{"page", *q.Page})
	}

	if q.Limit != nil {
		params = append(params, queryParam{"limit", *q.Limit})
	}

	if q.MinPrice != nil {
		params = append(params, queryParam{"min_price", *q.MinPrice})
	}

	if q.MaxPrice != nil {
		params = append(params, queryParam{"max_price", *q.MaxPrice})
	}

	if q.SortBy != nil {
		params = append(params, queryParam{"sort_by", *q.SortBy})
	}

	if q.SortOrder != nil {
		params = append(params, queryParam{"sort_order", *q.SortOrder})
	}

	values := url.Values{}

	for _, param := range params {
		fragment, err := runtime.StyleParamWithLocation("form", true, param.name, runtime.ParamLocationQuery, param.value)
		if err != nil {
			return nil, fmt.Errorf("encoding query parameter %s: %w", param.name, err)
		}

		parsed, err := url.ParseQuery(fragment)
		if err != nil {
			return nil, fmt.Errorf("parsing query parameter %s: %w", param.name, err)
		}

		for k, v := range parsed {
			for _, v2 := range v {
				values.Add(k, v2)
			}
		}
	}

	return values, nil
}
