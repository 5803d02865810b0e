package core

import "pkt.systems/xrsession/schema"

// twoCall implements the enumeration idiom: a zero capacity returns only the
// count, a non-zero capacity smaller than the count is an error.
func twoCall[T any](op, field string, capacity int, items []T) (int, []T, *schema.Error) {
	count := len(items)
	if capacity < 0 {
		return count, nil, schema.Errorf(schema.ErrValidationFailure, op, "(%s == %d) must not be negative", field, capacity)
	}
	if capacity == 0 {
		return count, nil, nil
	}
	if capacity < count {
		return count, nil, schema.Errorf(schema.ErrSizeInsufficient, op, "(%s == %d) need %d", field, capacity, count)
	}
	out := make([]T, count)
	copy(out, items)
	return count, out, nil
}
