package domain

import "math"

// CalculateProjectProgress maps a task list to a completion percentage in
// [0, 100]. Each task contributes its own progress, with done tasks counting
// as 100. An empty list is 0% complete.
func CalculateProjectProgress(tasks []Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tasks {
		sum += taskCompletion(t)
	}
	return math.Round(sum / float64(len(tasks)))
}

func taskCompletion(t Task) float64 {
	if t.Status == TaskDone {
		return 100
	}
	return math.Max(0, math.Min(100, t.Progress))
}
