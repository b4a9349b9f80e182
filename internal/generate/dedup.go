package generate

import (
	"fmt"
	"sort"
	"strings"
)

// buildDedup formats existing library keys for the prompt, respecting the
// max limit. Returns "None" if there are no keys.
func buildDedup(keys map[string]struct{}, max int) string {
	if len(keys) == 0 {
		return "None"
	}

	list := make([]string, 0, len(keys))
	for k := range keys {
		list = append(list, k)
	}
	sort.Strings(list)
	if max > 0 && len(list) > max {
		list = list[:max]
	}

	var b strings.Builder
	for i, k := range list {
		fmt.Fprintf(&b, "%d. %s\n", i+1, k)
	}
	return strings.TrimRight(b.String(), "\n")
}
