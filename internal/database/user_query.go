package database

import (
	"gorm.io/gorm"

	"github.com/assistapp/assistance/internal/model"
)

type UserQuery struct {
	Query[model.User]
	id         uint
	email      string
	withCourse bool
}

func NewUserQuery(db *gorm.DB) *UserQuery {
	return &UserQuery{
		Query: Query[model.User]{
			db:    db,
			order: "users.id",
		},
	}
}

func (q *UserQuery) Id(id uint) *UserQuery {
	q.id = id

	return q
}

func (q *UserQuery) Email(email string) *UserQuery {
	q.email = email

	return q
}

func (q *UserQuery) WithCourse() *UserQuery {
	q.withCourse = true

	return q
}

func (q *UserQuery) where() *gorm.DB {
	tx := q.db

	if q.withCourse {
		tx = tx.Joins("Course")
	}

	if q.id != 0 {
		tx = tx.Where("users.id = ?", q.id)
	}

	if q.email != "" {
		tx = tx.Where("users.email = ?", q.email)
	}

	return tx
}

func (q *UserQuery) Get() ([]*model.User, error) {
	return q.get(q.where().Model(&model.User{}))
}

func (q *UserQuery) One() (*model.User, error) {
	return q.one(q.where().Model(&model.User{}))
}

func (q *UserQuery) Count() int64 {
	return q.count(q.where().Model(&model.User{}))
}
