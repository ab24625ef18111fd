package search

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CountText renders the list summary in Spanish:
// "N productos cargados" when no search is active, otherwise how many of the
// total products match.
func CountText(visible, total int, searchActive bool) string {
	p := message.NewPrinter(language.Spanish)
	switch {
	case !searchActive:
		return p.Sprintf("%d productos cargados", total)
	case visible == 0:
		return p.Sprintf("0 de %d productos", total)
	case visible == total:
		return p.Sprintf("%d productos (todos coinciden)", visible)
	default:
		return p.Sprintf("%d de %d productos", visible, total)
	}
}
