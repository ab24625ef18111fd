package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() Product {
	return Product{
		Reference:      "456-DEFGH",
		Name:           "Aceite de oliva virgen extra",
		Brand:          "Picual",
		Description:    "Aceite de oliva de primera presión en frío",
		Price:          "12,95",
		AvailableCount: 85,
		Department:     "Alimentación",
	}
}

func Test_Product_SearchText(t *testing.T) {
	// given
	p := validProduct()

	// when
	text := p.SearchText()

	// then
	assert.Equal(t, "456-defgh aceite de oliva virgen extra picual aceite de oliva de primera presión en frío alimentación 12,95 85", text)
}

func Test_ParsePrice(t *testing.T) {
	testCases := []struct {
		name        string
		price       string
		expected    string
		expectError bool
	}{
		{name: "Success - comma", price: "5,63", expected: "5.63"},
		{name: "Success - dot", price: "899.00", expected: "899"},
		{name: "Success - integer", price: "12", expected: "12"},
		{name: "Error - placeholder", price: Unavailable, expectError: true},
		{name: "Error - empty", price: "", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			got, err := ParsePrice(tc.price)
			// then
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.expected).Equal(got), got.String())
		})
	}
}

func Test_NewValidator(t *testing.T) {
	testCases := []struct {
		name          string
		mutate        func(p *Product)
		expectedField string
		expectedTag   string
	}{
		{name: "Success - valid product", mutate: func(*Product) {}},
		{name: "Success - dot price", mutate: func(p *Product) { p.Price = "12.5" }},
		{name: "Error - short reference", mutate: func(p *Product) { p.Reference = "ab" }, expectedField: "Reference", expectedTag: "min"},
		{name: "Error - short name", mutate: func(p *Product) { p.Name = "a" }, expectedField: "Name", expectedTag: "min"},
		{name: "Error - short description", mutate: func(p *Product) { p.Description = "abcd" }, expectedField: "Description", expectedTag: "min"},
		{name: "Error - price with three decimals", mutate: func(p *Product) { p.Price = "1,234" }, expectedField: "Price", expectedTag: "price"},
		{name: "Error - price placeholder", mutate: func(p *Product) { p.Price = Unavailable }, expectedField: "Price", expectedTag: "price"},
		{name: "Error - negative count", mutate: func(p *Product) { p.AvailableCount = -1 }, expectedField: "AvailableCount", expectedTag: "min"},
		{name: "Error - missing department", mutate: func(p *Product) { p.Department = "" }, expectedField: "Department", expectedTag: "required"},
	}

	v := NewValidator()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			p := validProduct()
			tc.mutate(&p)
			// when
			err := v.Struct(p)
			// then
			if tc.expectedField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "'"+tc.expectedField+"'")
			assert.Contains(t, err.Error(), "'"+tc.expectedTag+"'")
		})
	}
}
