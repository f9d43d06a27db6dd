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

// Package seed modifies the GoShop database directly for state the public
// API cannot create, namely administrators.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrNotPromoted is returned when no user row was updated, either the
	// email is unknown or the role does not exist.
	ErrNotPromoted = errors.New("user not promoted")
)

// promoteQuery only touches the row when the role exists so a missing role
// is reported instead of nulling the foreign key.
const promoteQuery = `UPDATE users
SET role_id = (SELECT id FROM roles WHERE name = $2)
WHERE email = $1 AND EXISTS (SELECT 1 FROM roles WHERE name = $2)`

// PromoteToRole assigns the named role to the user with the given email.
func PromoteToRole(ctx context.Context, databaseURL, email, role string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	defer conn.Close(ctx)

	tag, err := conn.Exec(ctx, promoteQuery, email, role)
	if err != nil {
		return fmt.Errorf("updating role for %s: %w", email, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: email %s, role %s", ErrNotPromoted, email, role)
	}

	return nil
}
