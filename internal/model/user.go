package model

import "time"

type User struct {
	ID                uint `gorm:"primaryKey"`
	CourseID          uint `gorm:"index"`
	FullName          string
	Email             string `gorm:"uniqueIndex;size:255"`
	AssistantStars    float64
	VerifiedAssistant bool
	CreatedAt         time.Time

	Course *Course `gorm:"foreignKey:CourseID"`
}

type Course struct {
	ID          uint `gorm:"primaryKey"`
	Name        string
	Description string

	Subject *Subject `gorm:"foreignKey:CourseID"`
}

type Subject struct {
	ID          uint `gorm:"primaryKey"`
	CourseID    uint `gorm:"index"`
	Name        string
	Description string
}
