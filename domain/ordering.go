package domain

import "sort"

// AppendOrder returns the order a task appended to the column should get:
// one past the current maximum, or 0 for an empty column.
func AppendOrder(tasks []Task, columnID string) int {
	max := -1
	for _, t := range tasks {
		if t.Status == columnID && t.Order > max {
			max = t.Order
		}
	}
	return max + 1
}

// TasksInColumn returns the column's tasks sorted by order. Ties keep the
// collection's iteration order.
func TasksInColumn(tasks []Task, columnID string) []Task {
	var column []Task
	for _, t := range tasks {
		if t.Status == columnID {
			column = append(column, t)
		}
	}
	sort.SliceStable(column, func(i, j int) bool { return column[i].Order < column[j].Order })
	return column
}

// ReorderWithinColumn moves the dragged task to the target task's position
// inside their shared column and reassigns contiguous orders 0..n-1 to that
// column only. The input is returned unchanged when the two tasks differ in
// status or are the same task; moving across columns is a status change and
// goes through that path instead.
func ReorderWithinColumn(tasks []Task, draggedID, targetID string) []Task {
	if draggedID == targetID {
		return tasks
	}

	var dragged, target *Task
	for i := range tasks {
		switch tasks[i].ID {
		case draggedID:
			dragged = &tasks[i]
		case targetID:
			target = &tasks[i]
		}
	}
	if dragged == nil || target == nil || dragged.Status != target.Status {
		return tasks
	}

	column := TasksInColumn(tasks, dragged.Status)
	draggedIdx, targetIdx := -1, -1
	for i, t := range column {
		switch t.ID {
		case draggedID:
			draggedIdx = i
		case targetID:
			targetIdx = i
		}
	}
	if draggedIdx < 0 || targetIdx < 0 {
		return tasks
	}

	moved := column[draggedIdx]
	column = append(column[:draggedIdx], column[draggedIdx+1:]...)
	column = append(column[:targetIdx], append([]Task{moved}, column[targetIdx:]...)...)

	newOrders := make(map[string]int, len(column))
	for i, t := range column {
		newOrders[t.ID] = i
	}

	updated := make([]Task, len(tasks))
	for i, t := range tasks {
		if order, ok := newOrders[t.ID]; ok {
			t.Order = order
		}
		updated[i] = t
	}
	return updated
}

// NormalizeOrders assigns orders by array index within each status group.
// Used to migrate legacy snapshots that predate the order field.
func NormalizeOrders(tasks []Task) []Task {
	next := make(map[string]int)
	normalized := make([]Task, len(tasks))
	for i, t := range tasks {
		t.Order = next[t.Status]
		next[t.Status]++
		normalized[i] = t
	}
	return normalized
}

// AppendWithOrders appends newcomers to the collection, giving each a
// sequential order continuing from the per-column count of the post-merge
// list. Existing tasks keep their orders untouched; placeholder orders on
// newcomers are discarded.
func AppendWithOrders(tasks, newcomers []Task) []Task {
	counts := make(map[string]int)
	for _, t := range tasks {
		if counts[t.Status] <= t.Order {
			counts[t.Status] = t.Order + 1
		}
	}
	out := append([]Task(nil), tasks...)
	for _, t := range newcomers {
		t.Order = counts[t.Status]
		counts[t.Status]++
		out = append(out, t)
	}
	return out
}
