package search

import (
	"cmp"
	"slices"

	"github.com/abgdnv/catalog/internal/product/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Column names a sortable field by its JSON name.
type Column string

const (
	ColumnNone           Column = ""
	ColumnReference      Column = "referencia"
	ColumnName           Column = "nombre"
	ColumnBrand          Column = "marca"
	ColumnDescription    Column = "descripcion"
	ColumnPrice          Column = "precio"
	ColumnAvailableCount Column = "numeroDisponible"
	ColumnDepartment     Column = "departamento"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

var columns = []Column{
	ColumnReference, ColumnName, ColumnBrand, ColumnDescription, ColumnPrice, ColumnAvailableCount, ColumnDepartment,
}

// ParseColumn validates a column name. The empty string means unsorted.
func ParseColumn(name string) (Column, bool) {
	if name == "" {
		return ColumnNone, true
	}
	c := Column(name)
	return c, slices.Contains(columns, c)
}

// ParseOrder validates a sort direction. The empty string means ascending.
func ParseOrder(name string) (Order, bool) {
	switch Order(name) {
	case "", Asc:
		return Asc, true
	case Desc:
		return Desc, true
	default:
		return "", false
	}
}

// Sort returns a stably sorted copy of products. Text columns use Spanish
// collation; prices compare numerically and unparseable prices come last in
// either direction.
func Sort(products []model.Product, column Column, order Order) []model.Product {
	out := make([]model.Product, len(products))
	copy(out, products)
	if column == ColumnNone {
		return out
	}

	desc := order == Desc
	coll := collate.New(language.Spanish, collate.IgnoreCase)
	text := func(a, b string) int {
		return direction(coll.CompareString(a, b), desc)
	}

	slices.SortStableFunc(out, func(a, b model.Product) int {
		switch column {
		case ColumnReference:
			return text(a.Reference, b.Reference)
		case ColumnName:
			return text(a.Name, b.Name)
		case ColumnBrand:
			return text(a.Brand, b.Brand)
		case ColumnDescription:
			return text(a.Description, b.Description)
		case ColumnDepartment:
			return text(a.Department, b.Department)
		case ColumnAvailableCount:
			return direction(cmp.Compare(a.AvailableCount, b.AvailableCount), desc)
		case ColumnPrice:
			return comparePrice(a.Price, b.Price, desc)
		default:
			return 0
		}
	})
	return out
}

func comparePrice(a, b string, desc bool) int {
	pa, errA := model.ParsePrice(a)
	pb, errB := model.ParsePrice(b)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	}
	return direction(pa.Cmp(pb), desc)
}

func direction(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}
