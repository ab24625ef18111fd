package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_migrateURL(t *testing.T) {
	testCases := []struct {
		url      string
		expected string
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{"postgresql://localhost/db", "pgx5://localhost/db"},
		{"pgx5://localhost/db", "pgx5://localhost/db"},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			assert.Equal(t, tc.expected, migrateURL(tc.url))
		})
	}
}
