package client

import (
	"html/template"
	"io"
	"strings"
	"time"

	"tareas/internal/domain/models"
)

const (
	noDueDate  = "Sin fecha"
	dateLayout = "2/1/2006"
)

var statusLabels = map[models.Status]string{
	models.StatusPending:    "Pendiente",
	models.StatusInProgress: "En Progreso",
	models.StatusCompleted:  "Completada",
}

func StatusLabel(s models.Status) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

var tasksTemplate = template.Must(template.New("tasks").Parse(`
{{- if not . -}}
<div class="empty-state"><p>No hay tareas para mostrar</p></div>
{{- else -}}
<div class="tasks-list">
{{- range . }}
<div class="task-card priority-{{ .Priority }} estado-{{ .Status }}" data-task-id="{{ .ID }}">
  <div class="task-header"><h3 class="task-title">{{ .Title }}</h3></div>
  {{- if .Description }}
  <p class="task-description">{{ .Description }}</p>
  {{- end }}
  <div class="task-meta">
    <span class="task-badge badge-priority {{ .Priority }}">Prioridad: {{ .PriorityUpper }}</span>
    <span class="task-badge badge-status {{ .Status }}">{{ .StatusLabel }}</span>
    {{- if .Overdue }}
    <span class="task-badge badge-overdue">Vencida</span>
    {{- end }}
  </div>
  <div class="task-date">Vence: {{ .Due }}</div>
</div>
{{- end }}
</div>
{{- end }}
`))

type taskView struct {
	ID            int64
	Title         string
	Description   string
	Priority      string
	PriorityUpper string
	Status        string
	StatusLabel   string
	Due           string
	Overdue       bool
}

// RenderTasks writes the task cards as HTML. Every user-supplied field goes
// through html/template escaping.
func RenderTasks(w io.Writer, tasks []models.Task, now time.Time) error {
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		v := taskView{
			ID:            t.ID,
			Title:         t.Title,
			Priority:      string(t.Priority),
			PriorityUpper: strings.ToUpper(string(t.Priority)),
			Status:        string(t.Status),
			StatusLabel:   StatusLabel(t.Status),
		}
		if t.Description != nil {
			v.Description = *t.Description
		}
		v.Due = FormatDue(t)
		v.Overdue = Overdue(t, now)
		views = append(views, v)
	}
	return tasksTemplate.Execute(w, views)
}

// FormatDue renders the due date the way task cards show it.
func FormatDue(t models.Task) string {
	if due, ok := dueDate(t); ok {
		return due.Format(dateLayout)
	}
	return noDueDate
}

// Overdue reports a due date in the past on a task that is not completed.
func Overdue(t models.Task, now time.Time) bool {
	due, ok := dueDate(t)
	return ok && due.Before(now) && t.Status != models.StatusCompleted
}

func dueDate(t models.Task) (time.Time, bool) {
	if t.DueDate == nil || *t.DueDate == "" {
		return time.Time{}, false
	}
	due, err := time.Parse(time.DateOnly, *t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}
