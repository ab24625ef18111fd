// Package seed holds the catalog loaded at startup when no persisted snapshot exists.
package seed

import "github.com/abgdnv/catalog/internal/product/model"

var products = []model.Product{
	{Reference: "123-ABCDR", Name: "Bonito del norte", Brand: "Ortiz", Description: "Conserva de atún en aceite de oliva virgen extra", Price: "5,63", AvailableCount: 126, Department: "Alimentación"},
	{Reference: "456-DEFGH", Name: "Aceite de oliva virgen extra", Brand: "Picual", Description: "Aceite de oliva de primera presión en frío", Price: "12,95", AvailableCount: 85, Department: "Alimentación"},
	{Reference: "789-IJKLM", Name: "Smartphone Galaxy S24", Brand: "Samsung", Description: "Teléfono inteligente con pantalla AMOLED de 6.1 pulgadas", Price: "899,00", AvailableCount: 45, Department: "Electrónica"},
	{Reference: "101-NOPQR", Name: "Camiseta básica algodón", Brand: "Zara", Description: "Camiseta de manga corta 100% algodón orgánico", Price: "15,95", AvailableCount: 234, Department: "Ropa y Accesorios"},
	{Reference: "112-STUVW", Name: "Detergente líquido", Brand: "Ariel", Description: "Detergente concentrado para ropa de color", Price: "8,45", AvailableCount: 167, Department: "Hogar y Limpieza"},
	{Reference: "131-XYZAB", Name: "Auriculares inalámbricos", Brand: "Sony", Description: "Auriculares Bluetooth con cancelación de ruido", Price: "249,99", AvailableCount: 32, Department: "Electrónica"},
	{Reference: "415-CDEFG", Name: "Pasta integral", Brand: "Gallo", Description: "Espaguetis integrales de trigo duro", Price: "2,35", AvailableCount: 298, Department: "Alimentación"},
	{Reference: "617-HIJKL", Name: "Zapatillas deportivas", Brand: "Nike", Description: "Zapatillas running Air Max con amortiguación", Price: "129,95", AvailableCount: 67, Department: "Deportes"},
	{Reference: "819-MNOPQ", Name: "Crema facial hidratante", Brand: "Nivea", Description: "Crema hidratante para todo tipo de pieles", Price: "6,75", AvailableCount: 143, Department: "Belleza y Cuidado Personal"},
	{Reference: "202-RSTUV", Name: "Lámpara LED escritorio", Brand: "Philips", Description: "Lámpara LED regulable con brazo articulado", Price: "45,50", AvailableCount: 78, Department: "Hogar y Decoración"},
	{Reference: "303-WXYZC", Name: "Vitaminas multivitamínico", Brand: "Centrum", Description: "Complemento vitamínico diario para adultos", Price: "18,99", AvailableCount: 156, Department: "Salud y Farmacia"},
	{Reference: "404-DEFHI", Name: "Balón de fútbol", Brand: "Adidas", Description: "Balón oficial de competición FIFA Quality Pro", Price: "89,90", AvailableCount: 23, Department: "Deportes"},
}

// Products returns a fresh copy of the default catalog.
func Products() []model.Product {
	out := make([]model.Product, len(products))
	copy(out, products)
	return out
}
