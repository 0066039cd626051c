package mapping

// NullableString returns nil for the empty string so optional columns store NULL.
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences a nullable column, treating NULL as empty.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
