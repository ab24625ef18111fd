// Package search filters, sorts and summarizes the product list.
package search

import (
	"strings"

	"github.com/abgdnv/catalog/internal/product/model"
)

// Normalize lowercases query, trims it and collapses whitespace runs to one space.
func Normalize(query string) string {
	return strings.Join(Terms(query), " ")
}

// Terms splits a query into lowercase search terms.
func Terms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Matches reports whether every term is a substring of the product's search text.
func Matches(p model.Product, terms []string) bool {
	text := p.SearchText()
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

// Filter returns the products matching query in their original order.
// A blank query matches everything. The input is never modified.
func Filter(products []model.Product, query string) []model.Product {
	terms := Terms(query)
	out := make([]model.Product, 0, len(products))
	if len(terms) == 0 {
		return append(out, products...)
	}
	for _, p := range products {
		if Matches(p, terms) {
			out = append(out, p)
		}
	}
	return out
}
