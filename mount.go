package phttp

import (
	"sort"
	"strings"
)

type mountEntry struct {
	prefix string
	app    *App
}

// Mount attaches a sub-application at a URL prefix. The mounted application
// receives requests with the prefix stripped from the path. The mount table
// is re-sorted by descending prefix length after every mount, so the most
// specific prefix always wins resolution.
//
// The prefix must start with '/' and name at least one byte beyond it; this
// keeps mount resolution loop-safe because every followed mount strictly
// shortens the path.
func (a *App) Mount(prefix string, sub *App) {
	if !strings.HasPrefix(prefix, "/") || len(prefix) < 2 {
		panic("phttp: mount prefix must start with '/' and name a subtree")
	}

	a.mounts = append(a.mounts, mountEntry{prefix: prefix, app: sub})
	sort.SliceStable(a.mounts, func(i, j int) bool {
		return len(a.mounts[i].prefix) > len(a.mounts[j].prefix)
	})
}

// resolveMount follows mount-table prefixes transitively, starting from a.
// Each step switches to the sub-application owning the longest matching
// prefix, strips the prefix and re-normalizes the remainder to begin with
// '/'. It returns the resolved application and the remaining path, whose own
// route table is the one used for route resolution.
func (a *App) resolveMount(path string) (*App, string) {
	cur := a

	for {
		matched := false

		for _, m := range cur.mounts {
			if strings.HasPrefix(path, m.prefix) {
				cur = m.app
				path = path[len(m.prefix):]

				if !strings.HasPrefix(path, "/") {
					path = "/" + path
				}

				matched = true

				break
			}
		}

		if !matched {
			return cur, path
		}
	}
}
