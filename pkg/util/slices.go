package util

func InPlaceFilter[T any](s *[]T, p func(T) bool) {
	i := 0
	for _, e := range *s {
		if p(e) {
			(*s)[i] = e
			i++
		}
	}
	*s = (*s)[:i]
}

// DedupeConsecutive drops elements equal to the one directly before them.
// Non-adjacent repeats are kept.
func DedupeConsecutive[T comparable](items []T) []T {
	var deduped []T
	for i, item := range items {
		if i > 0 && item == items[i-1] {
			continue
		}
		deduped = append(deduped, item)
	}

	return deduped
}

// RemoveDuplicateStrings keeps the first occurrence of every non-empty string
func RemoveDuplicateStrings(strings []string, ignoreList []string) []string {
	presentStrings := make(map[string]bool)
	var list []string

	for _, ignoreString := range ignoreList {
		presentStrings[ignoreString] = true
	}

	for _, item := range strings {
		if _, value := presentStrings[item]; !value && item != "" {
			presentStrings[item] = true
			list = append(list, item)
		}
	}
	return list
}
