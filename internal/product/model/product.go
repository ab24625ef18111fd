// Package model defines the catalog Product record.
package model

import (
	"strconv"
	"strings"
)

// Unavailable marks a field whose value is not known yet.
const Unavailable = "--"

// Product is a catalog entry identified by its Reference.
// Price is kept as display text with a comma or dot decimal separator.
type Product struct {
	Reference      string `json:"referencia"       validate:"required,min=3,max=50"`
	Name           string `json:"nombre"           validate:"required,min=2,max=255"`
	Brand          string `json:"marca"            validate:"required,min=2,max=100"`
	Description    string `json:"descripcion"      validate:"required,min=5,max=1000"`
	Price          string `json:"precio"           validate:"required,price"`
	AvailableCount int    `json:"numeroDisponible" validate:"min=0"`
	Department     string `json:"departamento"     validate:"required,min=2,max=100"`
}

// SearchText returns every field joined by a single space and lowercased.
func (p Product) SearchText() string {
	return strings.ToLower(strings.Join([]string{
		p.Reference,
		p.Name,
		p.Brand,
		p.Description,
		p.Department,
		p.Price,
		strconv.Itoa(p.AvailableCount),
	}, " "))
}
