package tour

// Apply filters then sorts the accumulated list. The input slice is never modified.
func Apply(tours []Tour, f FilterState, order SortOrder) []Tour {
	return Sort(Filter(tours, f), order)
}
