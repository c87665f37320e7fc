package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"todoapp/internal/errors"
	"todoapp/internal/model"
	"todoapp/internal/repository"
)

// TodoService manages a user's todos. Every method takes the owner's ID;
// a todo owned by anyone else behaves as if it does not exist.
type TodoService interface {
	Create(ctx context.Context, ownerID uint, title string, description *string) (*model.Todo, error)
	Get(ctx context.Context, ownerID, id uint) (*model.Todo, error)
	List(ctx context.Context, ownerID uint) ([]model.Todo, error)
	ListCompleted(ctx context.Context, ownerID uint) ([]model.Todo, error)
	ListPending(ctx context.Context, ownerID uint) ([]model.Todo, error)
	Update(ctx context.Context, ownerID, id uint, patch model.TodoPatch) (*model.Todo, error)
	Toggle(ctx context.Context, ownerID, id uint) (*model.ToggleResult, error)
	Delete(ctx context.Context, ownerID, id uint) (*model.Todo, error)
	Stats(ctx context.Context, ownerID uint) (*model.TodoStats, error)
}

type todoService struct {
	repo repository.TodoRepository
}

// NewTodoService creates a new todo service.
func NewTodoService(repo repository.TodoRepository) TodoService {
	return &todoService{repo: repo}
}

// validateTitle trims the title and enforces the column limits.
func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", errors.ErrValidation)
	}
	if utf8.RuneCountInString(title) > model.TitleMaxLength {
		return "", fmt.Errorf("%w: title must be at most %d characters", errors.ErrValidation, model.TitleMaxLength)
	}
	return title, nil
}

func notFound(err error, id uint) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrTodoNotFound
	}
	return fmt.Errorf("todo %d: %w", id, err)
}

func (s *todoService) Create(ctx context.Context, ownerID uint, title string, description *string) (*model.Todo, error) {
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}

	todo := &model.Todo{
		Title:       title,
		Description: description,
		Completed:   false,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

func (s *todoService) Get(ctx context.Context, ownerID, id uint) (*model.Todo, error) {
	todo, err := s.repo.FindByOwner(ctx, ownerID, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	return todo, nil
}

func (s *todoService) List(ctx context.Context, ownerID uint) ([]model.Todo, error) {
	return s.list(ctx, ownerID, nil)
}

func (s *todoService) ListCompleted(ctx context.Context, ownerID uint) ([]model.Todo, error) {
	completed := true
	return s.list(ctx, ownerID, &completed)
}

func (s *todoService) ListPending(ctx context.Context, ownerID uint) ([]model.Todo, error) {
	completed := false
	return s.list(ctx, ownerID, &completed)
}

func (s *todoService) list(ctx context.Context, ownerID uint, completed *bool) ([]model.Todo, error) {
	todos, err := s.repo.ListByOwner(ctx, ownerID, completed)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// Update applies the fields present in patch. A provided title must be
// non-blank.
func (s *todoService) Update(ctx context.Context, ownerID, id uint, patch model.TodoPatch) (*model.Todo, error) {
	if patch.Title != nil {
		title, err := validateTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}

	return s.modify(ctx, ownerID, id, func(todo *model.Todo) {
		patch.Apply(todo)
	})
}

// Toggle flips the completed flag.
func (s *todoService) Toggle(ctx context.Context, ownerID, id uint) (*model.ToggleResult, error) {
	todo, err := s.modify(ctx, ownerID, id, func(todo *model.Todo) {
		todo.Completed = !todo.Completed
	})
	if err != nil {
		return nil, err
	}

	state := "incomplete"
	if todo.Completed {
		state = "completed"
	}
	return &model.ToggleResult{
		Message: fmt.Sprintf("Todo %d has been marked %s", todo.ID, state),
		Todo:    todo,
	}, nil
}

// modify reads the owner's todo and writes it back in one transaction.
// Concurrent writers to the same row are last-write-wins.
func (s *todoService) modify(ctx context.Context, ownerID, id uint, change func(*model.Todo)) (*model.Todo, error) {
	var updated *model.Todo
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.TodoRepository) error {
		todo, err := txRepo.FindByOwner(ctx, ownerID, id)
		if err != nil {
			return err
		}
		change(todo)
		if err := txRepo.Save(ctx, ownerID, todo); err != nil {
			return err
		}
		updated = todo
		return nil
	})
	if err != nil {
		return nil, notFound(err, id)
	}
	return updated, nil
}

// Delete removes the todo and returns its state before removal.
func (s *todoService) Delete(ctx context.Context, ownerID, id uint) (*model.Todo, error) {
	var deleted *model.Todo
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.TodoRepository) error {
		todo, err := txRepo.FindByOwner(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if err := txRepo.Delete(ctx, ownerID, id); err != nil {
			return err
		}
		deleted = todo
		return nil
	})
	if err != nil {
		return nil, notFound(err, id)
	}
	return deleted, nil
}

// Stats summarises the owner's list. The percentage has one decimal place,
// rounded half to even, or is "0%" for an empty list.
func (s *todoService) Stats(ctx context.Context, ownerID uint) (*model.TodoStats, error) {
	total, completed, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count todos: %w", err)
	}

	percentage := "0%"
	if total > 0 {
		// halves round to even: 1 of 16 is 6.2%
		ratio := decimal.NewFromInt(completed * 100).Div(decimal.NewFromInt(total))
		percentage = ratio.RoundBank(1).StringFixed(1) + "%"
	}
	return &model.TodoStats{
		Total:      total,
		Completed:  completed,
		Pending:    total - completed,
		Percentage: percentage,
	}, nil
}
