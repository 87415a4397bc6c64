package domain

import "github.com/google/uuid"

// ValidID reports whether id can name a stored row. Every table keys on a
// UUID, so anything else cannot exist and callers treat it as not found.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// CheckCategoryID rejects a category reference that is not a UUID.
func CheckCategoryID(id string) error {
	if id != "" && !ValidID(id) {
		return Invalid("Please choose a valid category.")
	}
	return nil
}
