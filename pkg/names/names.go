// Package names holds the name-splitting rules shared by contact creation
// and free-text contact resolution.
package names

import "strings"

// Split breaks a display name into first and last parts. The last
// whitespace-separated word becomes the last name; everything before it is
// the first name. A single-word name is all first name.
func Split(fullName string) (firstName, lastName string) {
	trimmed := strings.TrimSpace(fullName)
	idx := strings.LastIndex(trimmed, " ")
	if idx == -1 {
		return trimmed, ""
	}
	return trimmed[:idx], trimmed[idx+1:]
}

// Combine is the inverse of Split for display purposes.
func Combine(firstName, lastName string) string {
	if lastName == "" {
		return firstName
	}
	return firstName + " " + lastName
}
