package client

import "tareas/internal/domain/models"

// Filter narrows the fetched tasks locally. Zero fields match everything.
type Filter struct {
	Priority models.Priority
	Status   models.Status
}

func (f Filter) Apply(tasks []models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (f Filter) Empty() bool { return f.Priority == "" && f.Status == "" }
