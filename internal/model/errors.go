package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPeriod           = errors.New("invalid period")
	ErrNotFound                = errors.New("not found")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	ErrInconsistentBill        = errors.New("inconsistent bill")
)

// NotFoundError - обязательная запись отсутствует
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// CollaboratorError - отказ внешней зависимости (хранилище, сервис объяснений, курсы валют)
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func NewCollaboratorError(collaborator string, err error) *CollaboratorError {
	return &CollaboratorError{Collaborator: collaborator, Err: err}
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaboratorUnavailable
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
