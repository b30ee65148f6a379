package mapper

// FirstGap returns the smallest positive id missing from ids, which must be
// sorted ascending. Non-positive values and duplicates are ignored.
//
//	FirstGap(nil)            == 1
//	FirstGap([]int64{1,2,3}) == 4
//	FirstGap([]int64{1,3})   == 2
func FirstGap(ids []int64) int64 {
	next := int64(1)
	for _, id := range ids {
		switch {
		case id < next:
			continue
		case id == next:
			next++
		default:
			return next
		}
	}
	return next
}
