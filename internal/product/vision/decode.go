package vision

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abgdnv/catalog/internal/product/model"
)

// looseString accepts a JSON string or number.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = looseString(n.String())
	return nil
}

// looseInt accepts a JSON number or a numeric string. Fractions are truncated,
// negative values become 0 and values beyond math.MaxInt32 are rejected.
type looseInt int

func (n *looseInt) UnmarshalJSON(data []byte) error {
	var s looseString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("expected integer, got %q", string(s))
	}
	if f > math.MaxInt32 {
		return fmt.Errorf("integer out of range: %q", string(s))
	}
	*n = looseInt(max(f, 0))
	return nil
}

type extractedProduct struct {
	Reference      looseString `json:"referencia"`
	Name           looseString `json:"nombre"`
	Brand          looseString `json:"marca"`
	Description    looseString `json:"descripcion"`
	Price          looseString `json:"precio"`
	AvailableCount looseInt    `json:"numeroDisponible"`
	Department     looseString `json:"departamento"`
}

// DecodeProduct parses the JSON fragment of a model reply into a product.
// An array reply yields its first element.
func DecodeProduct(fragment string) (model.Product, error) {
	fragment = strings.TrimSpace(fragment)
	var p extractedProduct
	if strings.HasPrefix(fragment, "[") {
		var list []extractedProduct
		if err := json.Unmarshal([]byte(fragment), &list); err != nil {
			return model.Product{}, fmt.Errorf("failed to decode product list: %w", err)
		}
		if len(list) == 0 {
			return model.Product{}, ErrNoJSON
		}
		p = list[0]
	} else if err := json.Unmarshal([]byte(fragment), &p); err != nil {
		return model.Product{}, fmt.Errorf("failed to decode product: %w", err)
	}
	return model.Product{
		Reference:      strings.TrimSpace(string(p.Reference)),
		Name:           strings.TrimSpace(string(p.Name)),
		Brand:          strings.TrimSpace(string(p.Brand)),
		Description:    strings.TrimSpace(string(p.Description)),
		Price:          strings.TrimSpace(string(p.Price)),
		AvailableCount: int(p.AvailableCount),
		Department:     strings.TrimSpace(string(p.Department)),
	}, nil
}
