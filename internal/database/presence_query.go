package database

import (
	"gorm.io/gorm"

	"github.com/assistapp/assistance/internal/model"
)

type PresenceQuery struct {
	Query[model.PresenceEntry]
	id           uint
	assistanceID uint
	studentID    uint
	withStudent  bool
}

func NewPresenceQuery(db *gorm.DB) *PresenceQuery {
	return &PresenceQuery{
		Query: Query[model.PresenceEntry]{
			db:    db,
			order: "presence_entries.id",
		},
	}
}

func (q *PresenceQuery) Id(id uint) *PresenceQuery {
	q.id = id

	return q
}

func (q *PresenceQuery) Assistance(id uint) *PresenceQuery {
	q.assistanceID = id

	return q
}

func (q *PresenceQuery) Student(id uint) *PresenceQuery {
	q.studentID = id

	return q
}

func (q *PresenceQuery) WithStudent() *PresenceQuery {
	q.withStudent = true

	return q
}

func (q *PresenceQuery) Page(limit, offset int) *PresenceQuery {
	q.limit = limit
	q.offset = offset

	return q
}

func (q *PresenceQuery) where() *gorm.DB {
	tx := q.db

	if q.withStudent {
		tx = tx.InnerJoins("Student").Joins("Student.Course")
	}

	if q.id != 0 {
		tx = tx.Where("presence_entries.id = ?", q.id)
	}

	if q.assistanceID != 0 {
		tx = tx.Where("presence_entries.assistance_id = ?", q.assistanceID)
	}

	if q.studentID != 0 {
		tx = tx.Where("presence_entries.student_id = ?", q.studentID)
	}

	return tx
}

func (q *PresenceQuery) Get() ([]*model.PresenceEntry, error) {
	return q.get(q.where().Model(&model.PresenceEntry{}))
}

func (q *PresenceQuery) One() (*model.PresenceEntry, error) {
	return q.one(q.where().Model(&model.PresenceEntry{}))
}

func (q *PresenceQuery) Count() int64 {
	return q.count(q.where().Model(&model.PresenceEntry{}))
}

func (q *PresenceQuery) Update(updates map[string]any) error {
	return q.updateOrError(q.where().Model(&model.PresenceEntry{}), updates)
}

// Delete removes matching entries and reports how many rows went away.
func (q *PresenceQuery) Delete() (int64, error) {
	tx := q.where().Delete(&model.PresenceEntry{})

	return tx.RowsAffected, tx.Error
}
