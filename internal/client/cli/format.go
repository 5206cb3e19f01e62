package cli

import (
	"fmt"
	"strconv"
)

// Price renders an amount in cents.
func Price(cents int) string {
	return fmt.Sprintf("¥%.2f", float64(cents)/100)
}

// Deref shows nil strings as "-".
func Deref(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func Itoa(n int) string { return strconv.Itoa(n) }

// PageFooter summarises a paged list.
func PageFooter(page, size, total int) string {
	if size < 1 {
		size = 1
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	return fmt.Sprintf("page %d of %d, %d total", page, pages, total)
}
