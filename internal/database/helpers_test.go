package database

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/assistapp/assistance/internal/model"
)

func getTestDatabase(t *testing.T) *DatabaseManager {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	// one in-memory database, shared by all goroutines of a test
	sqlDB.SetMaxOpenConns(1)

	mm := New(db)
	require.NoError(t, mm.Migrate())

	return mm
}

func seedCourse(t *testing.T, mm *DatabaseManager, name string, withSubject bool) *model.Course {
	t.Helper()

	c := &model.Course{Name: name, Description: name + " course"}
	require.NoError(t, mm.Create(c))

	if withSubject {
		require.NoError(t, mm.Create(&model.Subject{
			CourseID:    c.ID,
			Name:        name + " subject",
			Description: "about " + name,
		}))
	}

	return c
}

func seedUser(t *testing.T, mm *DatabaseManager, name string, courseID uint) *model.User {
	t.Helper()

	u := &model.User{
		CourseID:  courseID,
		FullName:  name,
		Email:     name + "@example.com",
		CreatedAt: time.Now(),
	}
	require.NoError(t, mm.Create(u))

	return u
}

func seedAssistance(t *testing.T, mm *DatabaseManager, owner *model.User, courseID uint, title string, vacancies int) *model.Assistance {
	t.Helper()

	a := &model.Assistance{
		OwnerID:            owner.ID,
		CourseID:           courseID,
		Title:              title,
		Description:        "description of " + title,
		Date:               time.Now().Add(time.Hour * 24),
		TotalVacancies:     vacancies,
		AvailableVacancies: vacancies,
		Available:          true,
	}

	addr := &model.Address{
		Cep:    "58429-900",
		Street: "main street",
		Number: "100",
	}

	require.NoError(t, mm.CreateAssistance(a, addr, nil))

	return a
}
