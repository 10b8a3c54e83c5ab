package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID           int64     `json:"id" gorm:"column:id;primaryKey"`
	Name         string    `json:"nombre" gorm:"column:nombre"`
	Email        string    `json:"email" gorm:"column:email"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	CreatedAt    time.Time `json:"-" gorm:"column:fecha_registro"`
}

func (User) TableName() string { return "usuarios" }

// PublicUser is the only user shape that leaves the server.
type PublicUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"email"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

type RegisterRequest struct {
	Name     string `json:"nombre" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,bcryptlen"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Message string     `json:"message,omitempty"`
	Token   string     `json:"token"`
	User    PublicUser `json:"user"`
}

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

type Priority string

const (
	PriorityLow    Priority = "baja"
	PriorityMedium Priority = "media"
	PriorityHigh   Priority = "alta"
)

type Status string

const (
	StatusPending    Status = "pendiente"
	StatusInProgress Status = "en_progreso"
	StatusCompleted  Status = "completada"
)

const (
	ColTitle       = "titulo"
	ColDescription = "descripcion"
	ColDueDate     = "fecha_vencimiento"
	ColPriority    = "prioridad"
	ColStatus      = "estado"
	ColUpdatedAt   = "fecha_actualizacion"
)

type Task struct {
	ID          int64     `json:"id" gorm:"column:id;primaryKey"`
	OwnerID     int64     `json:"-" gorm:"column:usuario_id"`
	Title       string    `json:"titulo" gorm:"column:titulo"`
	Description *string   `json:"descripcion" gorm:"column:descripcion"`
	DueDate     *string   `json:"fecha_vencimiento" gorm:"column:fecha_vencimiento"`
	Priority    Priority  `json:"prioridad" gorm:"column:prioridad"`
	Status      Status    `json:"estado" gorm:"column:estado"`
	CreatedAt   time.Time `json:"fecha_creacion" gorm:"column:fecha_creacion"`
	UpdatedAt   time.Time `json:"fecha_actualizacion" gorm:"column:fecha_actualizacion"`
}

func (Task) TableName() string { return "tareas" }

type CreateTaskRequest struct {
	Title       string   `json:"titulo" validate:"required"`
	Description *string  `json:"descripcion,omitempty"`
	DueDate     *string  `json:"fecha_vencimiento,omitempty" validate:"omitempty,isodate"`
	Priority    Priority `json:"prioridad,omitempty" validate:"omitempty,oneof=baja media alta"`
	Status      Status   `json:"estado,omitempty" validate:"omitempty,oneof=pendiente en_progreso completada"`
}

// TaskPatch is a partial update: only fields that are Set change.
type TaskPatch struct {
	Title       Optional[string]   `json:"titulo,omitzero"`
	Description Optional[string]   `json:"descripcion,omitzero"`
	DueDate     Optional[string]   `json:"fecha_vencimiento,omitzero"`
	Priority    Optional[Priority] `json:"prioridad,omitzero"`
	Status      Optional[Status]   `json:"estado,omitzero"`
}

func (p TaskPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.DueDate.Set && !p.Priority.Set && !p.Status.Set
}

// Assignment is one column=value pair of an UPDATE.
type Assignment struct {
	Column string
	Value  any
}

// Assignments folds the patch into column assignments, always ending with the
// modification timestamp. Null or empty description and due date become NULL.
func (p TaskPatch) Assignments(now time.Time) []Assignment {
	out := make([]Assignment, 0, 6)
	if v, ok := p.Title.Get(); ok {
		out = append(out, Assignment{Column: ColTitle, Value: strings.TrimSpace(v)})
	}
	if p.Description.Set {
		out = append(out, Assignment{Column: ColDescription, Value: nullable(p.Description)})
	}
	if p.DueDate.Set {
		out = append(out, Assignment{Column: ColDueDate, Value: nullable(p.DueDate)})
	}
	if v, ok := p.Priority.Get(); ok {
		out = append(out, Assignment{Column: ColPriority, Value: string(v)})
	}
	if v, ok := p.Status.Get(); ok {
		out = append(out, Assignment{Column: ColStatus, Value: string(v)})
	}
	return append(out, Assignment{Column: ColUpdatedAt, Value: now})
}

func nullable(o Optional[string]) any {
	v, ok := o.Get()
	if !ok || v == "" {
		return nil
	}
	return v
}

// AssignmentMap is the shape gorm's Updates expects.
func AssignmentMap(assignments []Assignment) map[string]any {
	m := make(map[string]any, len(assignments))
	for _, a := range assignments {
		m[a.Column] = a.Value
	}
	return m
}

// Apply mutates the task in place with the given assignments.
func (t *Task) Apply(assignments []Assignment) {
	for _, a := range assignments {
		switch a.Column {
		case ColTitle:
			t.Title, _ = a.Value.(string)
		case ColDescription:
			t.Description = stringPtr(a.Value)
		case ColDueDate:
			t.DueDate = stringPtr(a.Value)
		case ColPriority:
			s, _ := a.Value.(string)
			t.Priority = Priority(s)
		case ColStatus:
			s, _ := a.Value.(string)
			t.Status = Status(s)
		case ColUpdatedAt:
			t.UpdatedAt, _ = a.Value.(time.Time)
		}
	}
}

func stringPtr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

var dueDateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// NormalizeDueDate accepts an ISO-8601 date or date-time and returns its
// calendar date as YYYY-MM-DD.
func NormalizeDueDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return "", false
}
