package pkg

// ToPtr returns a pointer to v. Handy for optional override fields.
func ToPtr[T any](v T) *T {
	return &v
}
