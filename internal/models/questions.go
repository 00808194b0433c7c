package models

import "slices"

// SecurityQuestions is the fixed catalog users pick their two questions from.
// Registration requires two distinct entries of this list.
var SecurityQuestions = []string{
	"What is your favorite food?",
	"What is your favorite color?",
	"What is the name of your first pet?",
}

// KnownSecurityQuestion reports whether q is part of the catalog
func KnownSecurityQuestion(q string) bool {
	return slices.Contains(SecurityQuestions, q)
}
