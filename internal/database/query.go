package database

import (
	"errors"

	"gorm.io/gorm"
)

// Query is the shared part of the fluent query builders. A builder
// accumulates clauses and is resolved exactly once; every request must
// construct a fresh one.
type Query[T any] struct {
	db     *gorm.DB
	limit  int
	offset int
	order  string
	err    error
}

func (q *Query[T]) get(tx *gorm.DB) ([]*T, error) {
	var res []*T

	if q.order != "" {
		tx = tx.Order(q.order)
	}

	// a page window needs both limit and offset, either alone is a no-op
	if q.limit > 0 && q.offset > 0 {
		tx = tx.Limit(q.limit).Offset(q.offset)
	}

	err := tx.Find(&res).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return res, nil
}

func (q *Query[T]) one(tx *gorm.DB) (*T, error) {
	res := new(T)

	err := tx.Take(&res).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return res, nil
}

func (q *Query[T]) count(tx *gorm.DB) int64 {
	var n int64

	tx.Count(&n)

	return n
}

func (q *Query[T]) update(tx *gorm.DB, updates map[string]any) (int64, error) {
	tx.Updates(updates)

	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}

func (q *Query[T]) updateOrError(tx *gorm.DB, updates map[string]any) error {
	tx.Updates(updates)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return errUpdate
	}

	return nil
}
