package utils

// NonZeroPtr returns nil for the zero value, so JSON encodes it as null.
func NonZeroPtr[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
