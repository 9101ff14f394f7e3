package db

// EffectiveLimit resolves the row cap for one query: the caller's requested
// limit bounded by the process-wide maximum, floored at 1. A requested value
// of zero or less means "no preference" and yields maxRows.
func EffectiveLimit(requested, maxRows int) int {
	limit := maxRows
	if requested > 0 && requested < maxRows {
		limit = requested
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}
