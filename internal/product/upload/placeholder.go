package upload

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/catalog/internal/product/model"
)

const defaultName = "Producto sin nombre"

var separators = strings.NewReplacer("-", " ", "_", " ")

// NewPlaceholderProduct builds the product created for an accepted image.
// Fields that cannot be known from the file are set to model.Unavailable.
func NewPlaceholderProduct(f File, now time.Time) model.Product {
	return model.Product{
		Reference:      Reference(now),
		Name:           nameFromFile(f.Name),
		Brand:          model.Unavailable,
		Description:    "Producto creado desde imagen: " + f.Name,
		Price:          model.Unavailable,
		AvailableCount: 0,
		Department:     model.Unavailable,
	}
}

// Reference derives a placeholder reference from a timestamp in milliseconds.
func Reference(now time.Time) string {
	return fmt.Sprintf("IMG-%d", now.UnixMilli())
}

func nameFromFile(fileName string) string {
	// a name without a dot has no base name
	base := ""
	if idx := strings.LastIndex(fileName, "."); idx >= 0 {
		base = fileName[:idx]
	}
	name := strings.TrimSpace(separators.Replace(base))
	if name == "" {
		return defaultName
	}
	return name
}
