// Package search implements the free-text search and sorting applied to a
// list of admission records before it is rendered.
package search

import (
	"slices"
	"strings"

	"github.com/zjgaokao/major-advisor/internal/major"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/width"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc" and "desc" case-insensitively; blank means Asc.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, true
	case "desc":
		return Desc, true
	default:
		return "", false
	}
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Query describes one rendering of a list.
type Query struct {
	Text      string
	SortKey   major.Field // empty means keep input order
	Direction Direction
}

// View applies Search then Sort. It is a pure function of its arguments.
func View(list []major.Major, q Query) []major.Major {
	out := Search(list, q.Text)
	if q.SortKey != "" {
		Sort(out, q.SortKey, q.Direction)
	}
	return out
}

// Search returns a new slice with the records whose major name, major code,
// university or subject requirements contain text, ignoring case and
// character width. An empty query matches everything.
func Search(list []major.Major, text string) []major.Major {
	needle := fold(strings.TrimSpace(text))
	out := make([]major.Major, 0, len(list))
	for i := range list {
		if needle == "" || matches(&list[i], needle) {
			out = append(out, list[i])
		}
	}
	return out
}

func matches(m *major.Major, needle string) bool {
	if strings.Contains(fold(m.MajorName), needle) || strings.Contains(fold(m.University), needle) ||
		strings.Contains(fold(m.MajorCode), needle) {
		return true
	}
	return m.SubjectRequirements != nil && strings.Contains(fold(*m.SubjectRequirements), needle)
}

// fold maps full-width forms to their narrow equivalents and applies
// Unicode case folding.
func fold(s string) string {
	return cases.Fold().String(width.Fold.String(s))
}

// Sort orders list in place by key. Nulls go last when ascending and first
// when descending. Text compares with Chinese collation, numbers
// numerically. Equal elements keep their relative order.
func Sort(list []major.Major, key major.Field, dir Direction) {
	cmp := Comparator(key, dir)
	slices.SortStableFunc(list, func(a, b major.Major) int {
		return cmp(&a, &b)
	})
}

// Sorted is Sort on a copy.
func Sorted(list []major.Major, key major.Field, dir Direction) []major.Major {
	out := slices.Clone(list)
	Sort(out, key, dir)
	return out
}

// Comparator returns a three-way comparison for key and dir. The returned
// function holds its own collator and must not be shared between goroutines.
func Comparator(key major.Field, dir Direction) func(a, b *major.Major) int {
	sign := 1
	if dir == Desc {
		sign = -1
	}

	var compareValues func(a, b *major.Major) int
	if key.Kind() == major.KindNumber {
		compareValues = func(a, b *major.Major) int {
			x, y := key.Number(a), key.Number(b)
			switch {
			case *x < *y:
				return -1
			case *x > *y:
				return 1
			}
			return 0
		}
	} else {
		col := collate.New(language.SimplifiedChinese)
		compareValues = func(a, b *major.Major) int {
			return col.CompareString(*key.Text(a), *key.Text(b))
		}
	}

	return func(a, b *major.Major) int {
		aNull, bNull := key.IsNull(a), key.IsNull(b)
		switch {
		case aNull && bNull:
			return 0
		case aNull:
			// Nulls trail in ascending order and lead in descending order.
			return sign
		case bNull:
			return -sign
		}
		return sign * compareValues(a, b)
	}
}
