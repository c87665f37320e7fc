package repository

import (
	"context"

	"gorm.io/gorm"

	"todoapp/internal/model"
)

// TodoRepository defines todo persistence operations. Every query is scoped
// to an owner; a row belonging to someone else reads as gorm.ErrRecordNotFound.
type TodoRepository interface {
	Create(ctx context.Context, todo *model.Todo) error
	FindByOwner(ctx context.Context, ownerID, id uint) (*model.Todo, error)
	// ListByOwner returns the owner's todos by ascending id. A nil completed
	// returns all of them.
	ListByOwner(ctx context.Context, ownerID uint, completed *bool) ([]model.Todo, error)
	Save(ctx context.Context, ownerID uint, todo *model.Todo) error
	Delete(ctx context.Context, ownerID, id uint) error
	CountByOwner(ctx context.Context, ownerID uint) (total, completed int64, err error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo TodoRepository) error) error
}

type todoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new todo repository.
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

// Create inserts a todo. Timestamps come from the connection's clock.
func (r *todoRepository) Create(ctx context.Context, todo *model.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

// FindByOwner finds a todo by ID within one owner's list.
func (r *todoRepository) FindByOwner(ctx context.Context, ownerID, id uint) (*model.Todo, error) {
	var todo model.Todo
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&todo).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) ListByOwner(ctx context.Context, ownerID uint, completed *bool) ([]model.Todo, error) {
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if completed != nil {
		query = query.Where("completed = ?", *completed)
	}

	todos := make([]model.Todo, 0)
	if err := query.Order("id").Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

// Save writes the mutable columns of todo and refreshes updated_at. Only the
// owner's row can match.
func (r *todoRepository) Save(ctx context.Context, ownerID uint, todo *model.Todo) error {
	db := r.db.WithContext(ctx)
	now := db.NowFunc()

	result := db.Model(todo).
		Where("owner_id = ?", ownerID).
		Updates(map[string]interface{}{
			"title":       todo.Title,
			"description": todo.Description,
			"completed":   todo.Completed,
			"updated_at":  now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	todo.UpdatedAt = now
	return nil
}

// Delete removes the owner's todo.
func (r *todoRepository) Delete(ctx context.Context, ownerID, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Todo{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByOwner returns how many todos the owner has and how many are done.
func (r *todoRepository) CountByOwner(ctx context.Context, ownerID uint) (total, completed int64, err error) {
	var counts struct {
		Total     int64
		Completed int64
	}
	err = r.db.WithContext(ctx).Model(&model.Todo{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed").
		Where("owner_id = ?", ownerID).
		Scan(&counts).Error
	if err != nil {
		return 0, 0, err
	}
	return counts.Total, counts.Completed, nil
}

// WithTransaction executes fn within a database transaction. The repository
// passed to fn is bound to the transaction.
func (r *todoRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo TodoRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &todoRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
