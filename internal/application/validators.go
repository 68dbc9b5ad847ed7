package application

import (
	"regexp"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = newValidator()

// awardNamePattern matches lowercase hyphenated award identifiers,
// the form every award and category name in the system uses.
var awardNamePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// maxSuggestionDistance bounds how far a misspelling may be from a
// known name before no suggestion is offered.
const maxSuggestionDistance = 4

func newValidator() *validator.Validate {
	v := validator.New()

	// awardname validates lowercase hyphenated identifiers such as
	// "robot-design" or "excellence-in-engineering".
	_ = v.RegisterValidation("awardname", func(fl validator.FieldLevel) bool {
		return awardNamePattern.MatchString(fl.Field().String())
	})

	return v
}

// suggestName returns the known name closest to the given misspelled
// one, when any is close enough to be a plausible typo. Comparison is
// case-folded so capitalization differences don't inflate distance.
func suggestName(name string, known []string) (string, bool) {
	folder := cases.Fold()
	folded := folder.String(name)

	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, candidate := range known {
		d := levenshtein.ComputeDistance(folded, folder.String(candidate))
		if d < bestDistance {
			bestDistance = d
			best = candidate
		}
	}
	return best, best != ""
}
