package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// parsePageList parses a list such as "1-3,5" into sorted, distinct page
// numbers. An empty list selects every page and returns nil.
func parsePageList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	seen := make(map[int]bool)
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")

		first, err := pageNumber(lo)
		if err != nil {
			return nil, err
		}
		last := first
		if isRange {
			if last, err = pageNumber(hi); err != nil {
				return nil, err
			}
			if last < first {
				return nil, fmt.Errorf("range %q runs backwards", part)
			}
		}
		for n := first; n <= last; n++ {
			if !seen[n] {
				seen[n] = true
				pages = append(pages, n)
			}
		}
	}
	sort.Ints(pages)
	return pages, nil
}

func pageNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid page number %q", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("page number %d is not positive", n)
	}
	return n, nil
}
