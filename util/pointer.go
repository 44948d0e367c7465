package util

// Ptr returns a pointer to v, for struct fields that distinguish unset
// from zero (e.g. a completion chunk's finish_reason).
func Ptr[T any](v T) *T {
	return &v
}
