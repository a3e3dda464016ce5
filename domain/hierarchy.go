package domain

// ChildIndex maps a parent id to its direct children's ids. Rebuilt on each
// query; the forest is small and the index keeps descendant walks linear.
type ChildIndex map[string][]string

// BuildChildIndex indexes the forest by ParentID. Tasks with a dangling
// parent reference still appear under that parent key; they are simply
// unreachable from any root, which is the tolerated behavior for partial
// imports.
func BuildChildIndex(tasks []Task) ChildIndex {
	index := make(ChildIndex, len(tasks))
	for _, t := range tasks {
		if t.ParentID != "" {
			index[t.ParentID] = append(index[t.ParentID], t.ID)
		}
	}
	return index
}

// DescendantsOf collects every task id whose parent chain leads back to id.
// Traversal is an explicit work list with a visited set, so a corrupted
// snapshot containing a cycle terminates instead of recursing forever.
func DescendantsOf(tasks []Task, id string) map[string]struct{} {
	index := BuildChildIndex(tasks)
	descendants := make(map[string]struct{})

	queue := append([]string(nil), index[id]...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, seen := descendants[current]; seen || current == id {
			continue
		}
		descendants[current] = struct{}{}
		queue = append(queue, index[current]...)
	}
	return descendants
}

// CandidateParents returns every task that may become the parent of id
// without creating a cycle: all tasks except id itself and its descendants.
func CandidateParents(tasks []Task, id string) []Task {
	descendants := DescendantsOf(tasks, id)
	candidates := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == id {
			continue
		}
		if _, isDescendant := descendants[t.ID]; isDescendant {
			continue
		}
		candidates = append(candidates, t)
	}
	return candidates
}

// TotalTimeSpent sums the task's own logged seconds with those of all its
// descendants.
func TotalTimeSpent(tasks []Task, id string) int64 {
	descendants := DescendantsOf(tasks, id)
	var total int64
	for _, t := range tasks {
		if t.ID == id {
			total += t.TimeSpent
			continue
		}
		if _, ok := descendants[t.ID]; ok {
			total += t.TimeSpent
		}
	}
	return total
}
