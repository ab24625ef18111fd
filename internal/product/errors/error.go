// Package errors provides the sentinel errors of the product catalog.
package errors

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrDuplicateReference = errors.New("product reference already exists")
)
