package util

import "golang.org/x/exp/slices"

// RemoveDuplicateStrings drops empty and repeated strings, keeping the first
// occurrence of each.
func RemoveDuplicateStrings(strings []string) []string {
	var list []string

	for _, item := range strings {
		if item != "" && !slices.Contains(list, item) {
			list = append(list, item)
		}
	}

	return list
}
