// Package subject evaluates elective subject requirements such as
// "物理+化学" or "物理/历史均可" against the three subjects a student took.
//
// Grammar:
//
//	requirement = "不限" | "" | clause { "+" clause }
//	clause      = subject { "/" subject } [ qualifier ]
//	qualifier   = "均可" | "任选一" | "任选其一" | "任选" | "选一" | "其一"
//
// "+" joins clauses that must all hold; "/" lists alternatives of which one
// suffices. Parenthesised notes such as "不限(艺术)" are ignored.
package subject

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/zjgaokao/major-advisor/internal/major"
)

// Compatibility is the outcome of checking a requirement.
type Compatibility int

const (
	// Unknown means the requirement could not be parsed.
	Unknown Compatibility = iota
	Compatible
	Incompatible
)

func (c Compatibility) String() string {
	switch c {
	case Compatible:
		return "compatible"
	case Incompatible:
		return "incompatible"
	default:
		return "unknown"
	}
}

// ErrUnparseable is returned for expressions outside the grammar.
var ErrUnparseable = errors.New("unparseable subject requirement")

// Requirement is a parsed expression in conjunctive normal form.
type Requirement struct {
	// Clauses must all be satisfied; each lists acceptable subjects.
	Clauses [][]string
}

// Unconstrained reports whether any subject combination is accepted.
func (r Requirement) Unconstrained() bool {
	return len(r.Clauses) == 0
}

var (
	notePattern = regexp.MustCompile(`[(（][^)）]*[)）]`)
	qualifiers  = []string{"任选其一", "任选一", "均可", "任选", "选一", "其一"}
	andReplacer = strings.NewReplacer("＋", "+", "和", "+", "且", "+")
	orReplacer  = strings.NewReplacer("／", "/", "、", "/", "或", "/")
)

// Parse turns an expression into a Requirement.
func Parse(expr string) (Requirement, error) {
	s := strings.TrimSpace(notePattern.ReplaceAllString(expr, ""))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || s == "不限" {
		return Requirement{}, nil
	}

	s = orReplacer.Replace(andReplacer.Replace(s))
	var req Requirement
	for _, part := range strings.Split(s, "+") {
		for _, q := range qualifiers {
			part = strings.TrimSuffix(part, q)
		}
		if part == "" {
			return Requirement{}, fmt.Errorf("%w: %q has an empty clause", ErrUnparseable, expr)
		}
		var clause []string
		for _, alt := range strings.Split(part, "/") {
			if !major.IsSubject(alt) {
				return Requirement{}, fmt.Errorf("%w: %q in %q is not a subject", ErrUnparseable, alt, expr)
			}
			if !slices.Contains(clause, alt) {
				clause = append(clause, alt)
			}
		}
		req.Clauses = append(req.Clauses, clause)
	}
	return req, nil
}

// SatisfiedBy reports whether subjects meet every clause.
func (r Requirement) SatisfiedBy(subjects []string) bool {
	for _, clause := range r.Clauses {
		ok := false
		for _, s := range clause {
			if slices.Contains(subjects, s) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// String renders r back in the canonical grammar.
func (r Requirement) String() string {
	if r.Unconstrained() {
		return "不限"
	}
	parts := make([]string, len(r.Clauses))
	for i, c := range r.Clauses {
		parts[i] = strings.Join(c, "/")
	}
	return strings.Join(parts, "+")
}

// Evaluate classifies expr against subjects. A nil expression places no
// constraint on the student.
func Evaluate(expr *string, subjects []string) Compatibility {
	if expr == nil {
		return Compatible
	}
	req, err := Parse(*expr)
	if err != nil {
		return Unknown
	}
	if req.SatisfiedBy(subjects) {
		return Compatible
	}
	return Incompatible
}

// Keep returns the records a student with subjects may apply to. Records
// whose requirement cannot be parsed are kept.
func Keep(list []major.Major, subjects []string) (kept []major.Major, dropped int) {
	kept = make([]major.Major, 0, len(list))
	for i := range list {
		if Evaluate(list[i].SubjectRequirements, subjects) == Incompatible {
			dropped++
			continue
		}
		kept = append(kept, list[i])
	}
	return kept, dropped
}
