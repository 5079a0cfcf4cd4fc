// Package deps holds the pure graph algorithms behind the dependency
// service (C4): cycle detection over the blocked_by edge set and
// transitive blocker resolution. Neither function touches storage —
// callers load the adjacency map fresh inside their own transaction
// and hand it in, so these stay trivially testable.
package deps

import "fmt"

// WouldCreateCycle reports whether adding the directed edge from->to to
// a graph already described by blockedBy (taskID -> its current direct
// blockers) would introduce a cycle, and if so returns the cycle path
// from->...->to->from for the caller's error payload.
//
// A self-edge (from == to) is always a cycle of length one.
func WouldCreateCycle(blockedBy map[string][]string, from, to string) (bool, []string) {
	if from == to {
		return true, []string{from, to}
	}

	// A cycle exists iff `from` is already reachable from `to` by
	// walking existing blocked_by edges — i.e. to (transitively)
	// depends on from already, so depending on to as well closes a loop.
	path, found := findPath(blockedBy, to, from, map[string]bool{})
	if !found {
		return false, nil
	}
	// path already runs to ... from, so prefixing from closes the loop.
	return true, append([]string{from}, path...)
}

// findPath runs a DFS from start looking for target, returning the
// first path discovered (inclusive of start and target).
func findPath(adj map[string][]string, start, target string, visited map[string]bool) ([]string, bool) {
	if start == target {
		return []string{start}, true
	}
	if visited[start] {
		return nil, false
	}
	visited[start] = true

	for _, next := range adj[start] {
		if path, ok := findPath(adj, next, target, visited); ok {
			return append([]string{start}, path...), true
		}
	}
	return nil, false
}

// TransitiveBlockers returns every task (direct or indirect) that must
// resolve before taskID can be considered unblocked, walking blockedBy
// edges breadth-first. The result excludes taskID itself.
func TransitiveBlockers(blockedBy map[string][]string, taskID string) []string {
	seen := map[string]bool{taskID: true}
	var out []string
	queue := append([]string{}, blockedBy[taskID]...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		queue = append(queue, blockedBy[id]...)
	}
	return out
}

// FormatCycle renders a cycle path as "a -> b -> c -> a" for error messages.
func FormatCycle(path []string) string {
	s := ""
	for i, id := range path {
		if i > 0 {
			s += " -> "
		}
		s += id
	}
	return fmt.Sprintf("%s", s)
}
