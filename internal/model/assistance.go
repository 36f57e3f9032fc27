package model

import "time"

// Assistance is a scheduled help session with bounded seating.
// AvailableVacancies is the live seat counter, TotalVacancies the cap it
// may never exceed.
type Assistance struct {
	ID                 uint   `gorm:"primaryKey"`
	OwnerID            uint   `gorm:"index;not null"`
	CourseID           uint   `gorm:"index"`
	Title              string `gorm:"size:255"`
	Description        string
	Date               time.Time
	TotalVacancies     int
	AvailableVacancies int `gorm:"check:available_vacancies >= 0"`
	Available          bool
	SuspendedDate      *time.Time
	CreatedAt          time.Time

	Owner   *User    `gorm:"foreignKey:OwnerID"`
	Course  *Course  `gorm:"foreignKey:CourseID"`
	Address *Address `gorm:"foreignKey:AssistanceID"`
	Tags    []*Tag   `gorm:"many2many:assistance_tags"`
}

type Address struct {
	ID           uint `gorm:"primaryKey"`
	AssistanceID uint `gorm:"index"`
	Cep          string
	Street       string
	Number       string
	Complement   string
	Reference    string
	Nickname     string
	Latitude     float64 `gorm:"check:latitude >= -90 AND latitude <= 90"`
	Longitude    float64 `gorm:"check:longitude >= -180 AND longitude <= 180"`
}

type Tag struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:128"`
}

// PresenceEntry is one subscription. The unique pair index backs the
// one-row-per-student rule.
type PresenceEntry struct {
	ID              uint `gorm:"primaryKey"`
	AssistanceID    uint `gorm:"uniqueIndex:idx_assistance_student"`
	StudentID       uint `gorm:"uniqueIndex:idx_assistance_student"`
	StudentPresence bool

	Assistance *Assistance `gorm:"foreignKey:AssistanceID"`
	Student    *User       `gorm:"foreignKey:StudentID"`
}
