package database

import (
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/assistapp/assistance/internal/model"
)

type DatabaseManager struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB) *DatabaseManager {
	m := &DatabaseManager{
		db:     db,
		logger: slog.With("logger", "dbm"),
	}

	return m
}

func (mm *DatabaseManager) Migrate() error {
	if mm == nil || mm.db == nil {
		return errors.New("no database")
	}

	return mm.db.AutoMigrate(
		&model.Course{},
		&model.Subject{},
		&model.User{},
		&model.Assistance{},
		&model.Address{},
		&model.Tag{},
		&model.PresenceEntry{},
	)
}

func (mm *DatabaseManager) Create(s any) error {
	if mm == nil || mm.db == nil {
		return nil
	}

	err := mm.db.Create(s).Error

	if err != nil {
		mm.logger.Error("error create object", slog.Any("error", err))
	}

	return err
}

func (mm *DatabaseManager) Save(s any) error {
	if mm == nil || mm.db == nil {
		return nil
	}

	err := mm.db.Save(s).Error

	if err != nil {
		mm.logger.Error("error saving object", slog.Any("error", err))
	}

	return err
}

func (mm *DatabaseManager) AssistanceQuery() *AssistanceQuery {
	return NewAssistanceQuery(mm.db)
}

func (mm *DatabaseManager) PresenceQuery() *PresenceQuery {
	return NewPresenceQuery(mm.db)
}

func (mm *DatabaseManager) UserQuery() *UserQuery {
	return NewUserQuery(mm.db)
}

// CreateAssistance stores the assistance, its address and its tags as one
// unit. If any step fails nothing persists.
func (mm *DatabaseManager) CreateAssistance(a *model.Assistance, addr *model.Address, tags []string) error {
	return mm.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}

		if addr != nil {
			addr.AssistanceID = a.ID

			if err := tx.Create(addr).Error; err != nil {
				return err
			}

			a.Address = addr
		}

		for _, name := range tags {
			t := new(model.Tag)

			if err := tx.FirstOrCreate(t, model.Tag{Name: name}).Error; err != nil {
				return err
			}

			if err := tx.Model(a).Association("Tags").Append(t); err != nil {
				return err
			}
		}

		return nil
	})
}

// UpdateAssistance applies a partial update. Column names go through the
// allow-list, the primary key is never writable.
func (mm *DatabaseManager) UpdateAssistance(id uint, updates map[string]any) error {
	checked := make(map[string]any, len(updates))

	for k, v := range updates {
		if k == "id" {
			continue
		}

		if !assistanceColumns[k] {
			return ErrUnknownField
		}

		checked[k] = v
	}

	if len(checked) == 0 {
		return nil
	}

	err := mm.AssistanceQuery().Id(id).Update(checked)

	if errors.Is(err, errUpdate) {
		return ErrNotFound
	}

	return err
}

// DisableAssistance soft-disables: the row stays, new subscriptions stop.
func (mm *DatabaseManager) DisableAssistance(id uint) error {
	err := mm.AssistanceQuery().Id(id).Update(map[string]any{
		"available":      false,
		"suspended_date": time.Now(),
	})

	if errors.Is(err, errUpdate) {
		return ErrNotFound
	}

	return err
}

// DeleteAssistance hard-deletes the assistance and everything hanging
// off it.
func (mm *DatabaseManager) DeleteAssistance(id uint) error {
	return mm.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Delete(&model.Assistance{}).Error; err != nil {
			return err
		}

		if err := tx.Where("assistance_id = ?", id).Delete(&model.Address{}).Error; err != nil {
			return err
		}

		if err := tx.Where("assistance_id = ?", id).Delete(&model.PresenceEntry{}).Error; err != nil {
			return err
		}

		return tx.Exec("DELETE FROM assistance_tags WHERE assistance_id = ?", id).Error
	})
}
