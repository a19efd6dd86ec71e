package service

// ClampedStock applies delta to current and floors the result at zero.
// A sale of more units than are on hand leaves the product at 0, never negative.
func ClampedStock(current, delta int) int {
	if next := current + delta; next > 0 {
		return next
	}
	return 0
}
