package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/assistapp/assistance/internal/model"
)

// Subscribe enrolls a user onto an assistance. The vacancy check and the
// decrement run as one conditional update inside the transaction, so two
// concurrent subscribers cannot take the last seat twice: the affected
// row count decides between success and ErrNoVacancies.
func (mm *DatabaseManager) Subscribe(assistanceID, userID uint) error {
	return mm.db.Transaction(func(tx *gorm.DB) error {
		a, err := takeAssistance(tx, assistanceID)
		if err != nil {
			return err
		}

		if a.OwnerID == userID {
			return ErrSelfSubscription
		}

		var n int64

		if err := tx.Model(&model.PresenceEntry{}).
			Where("assistance_id = ? AND student_id = ?", assistanceID, userID).
			Count(&n).Error; err != nil {
			return err
		}

		if n > 0 {
			return ErrAlreadySubscribed
		}

		res := tx.Model(&model.Assistance{}).
			Where("id = ? AND available_vacancies > 0", assistanceID).
			UpdateColumn("available_vacancies", gorm.Expr("available_vacancies - 1"))

		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrNoVacancies
		}

		return tx.Create(&model.PresenceEntry{
			AssistanceID: assistanceID,
			StudentID:    userID,
		}).Error
	})
}

// Unsubscribe removes the user's entry and gives the seat back. The
// increment is guarded by the total so the counter can never leave its
// bounds even if the row was tampered with.
func (mm *DatabaseManager) Unsubscribe(assistanceID, userID uint) error {
	return mm.db.Transaction(func(tx *gorm.DB) error {
		a, err := takeAssistance(tx, assistanceID)
		if err != nil {
			return err
		}

		if a.OwnerID == userID {
			return ErrSelfSubscription
		}

		res := tx.Where("assistance_id = ? AND student_id = ?", assistanceID, userID).
			Delete(&model.PresenceEntry{})

		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrNotSubscribed
		}

		up := tx.Model(&model.Assistance{}).
			Where("id = ? AND available_vacancies < total_vacancies", assistanceID).
			UpdateColumn("available_vacancies", gorm.Expr("available_vacancies + 1"))

		if up.Error != nil {
			return up.Error
		}

		if up.RowsAffected == 0 {
			return errors.New("vacancy counter out of bounds")
		}

		return nil
	})
}

// GivePresence confirms a subscriber showed up. Calling it again on a
// confirmed entry is a no-op.
func (mm *DatabaseManager) GivePresence(assistanceID, userID uint) error {
	p, err := mm.PresenceQuery().Assistance(assistanceID).Student(userID).One()
	if err != nil {
		return err
	}

	if p == nil {
		return ErrNotSubscribed
	}

	if p.StudentPresence {
		return nil
	}

	return mm.PresenceQuery().Id(p.ID).Update(map[string]any{"student_presence": true})
}

// Subscribers lists the presence entries of an assistance with their
// users. Only the owner or a current subscriber may look, and only
// allow-listed fields may be projected.
func (mm *DatabaseManager) Subscribers(assistanceID, requesterID uint, fields []string) ([]*model.PresenceEntry, error) {
	a, err := mm.AssistanceQuery().Id(assistanceID).One()
	if err != nil {
		return nil, err
	}

	if a == nil {
		return nil, ErrNotFound
	}

	if a.OwnerID != requesterID {
		if mm.PresenceQuery().Assistance(assistanceID).Student(requesterID).Count() == 0 {
			return nil, ErrNotAllowed
		}
	}

	if err := ValidateSubscriberFields(fields); err != nil {
		return nil, err
	}

	return mm.PresenceQuery().Assistance(assistanceID).WithStudent().Get()
}

func takeAssistance(tx *gorm.DB, id uint) (*model.Assistance, error) {
	var a model.Assistance

	err := tx.Take(&a, id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	if !a.Available {
		return nil, ErrUnavailable
	}

	return &a, nil
}
