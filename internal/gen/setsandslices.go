//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package gen

//
// SETS AND SLICES
//

// ToSet - returns a blank map of a slice
func ToSet[T comparable](sl []T) map[T]struct{} {
	m := make(map[T]struct{})
	for i := 0; i < len(sl); i++ {
		m[sl[i]] = struct{}{}
	}
	return m
}

// Unique - return only the unique items from a slice
func Unique[T comparable](s []T) []T {
	// can't use slices.Compact because that only looks at consecutive repeats: [a, a, b, a] -> [a, b, a]
	set := ToSet(s)

	var result []T
	for k := range set {
		result = append(result, k)
	}

	return result
}

// StringMapKeysIntoSlice - map[string]T -> []string
func StringMapKeysIntoSlice[T any](mp map[string]T) []string {
	sl := make([]string, len(mp))
	i := 0
	for k := range mp {
		sl[i] = k
		i += 1
	}
	return sl
}

// Sequence - the integers from start up to and including end, counting by step
func Sequence(start int, end int, step int) []int {
	if step < 1 {
		step = 1
	}
	var ss []int
	for n := start; n <= end; n += step {
		ss = append(ss, n)
	}
	return ss
}

// ArgMax - index and value of the largest element; ties go to the earlier index
func ArgMax(vv []float64) (int, float64) {
	which := 0
	max := vv[0]
	for i, v := range vv {
		if v > max {
			which = i
			max = v
		}
	}
	return which, max
}
