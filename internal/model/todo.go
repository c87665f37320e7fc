package model

import "time"

// TitleMaxLength is the widest title the todos table accepts.
const TitleMaxLength = 300

// Todo is a single item on a user's list.
type Todo struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:300;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Completed   bool      `json:"completed" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;<-:create"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	// OwnerID is fixed at creation; ownership never transfers.
	OwnerID uint `json:"-" gorm:"not null;index;<-:create"`
}

// TodoPatch carries the optional fields of an update. Nil fields are left as-is.
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Apply overwrites the fields present in the patch.
func (p TodoPatch) Apply(todo *Todo) {
	if p.Title != nil {
		todo.Title = *p.Title
	}
	if p.Description != nil {
		todo.Description = p.Description
	}
	if p.Completed != nil {
		todo.Completed = *p.Completed
	}
}

// TodoStats summarises a user's list.
type TodoStats struct {
	Total      int64  `json:"total"`
	Completed  int64  `json:"completed"`
	Pending    int64  `json:"pending"`
	Percentage string `json:"percentage"`
}

// ToggleResult is the outcome of flipping a todo's completed flag.
type ToggleResult struct {
	Message string `json:"message"`
	Todo    *Todo  `json:"todo"`
}
