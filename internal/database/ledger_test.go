package database

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/assistapp/assistance/internal/model"
)

func vacancies(t *testing.T, mm *DatabaseManager, id uint) int {
	t.Helper()

	a, err := mm.AssistanceQuery().Id(id).One()
	require.NoError(t, err)
	require.NotNil(t, a)

	return a.AvailableVacancies
}

func TestSubscribe(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)
	student := seedUser(t, mm, "student", course.ID)

	a := seedAssistance(t, mm, owner, course.ID, "algebra", 2)

	require.NoError(t, mm.Subscribe(a.ID, student.ID))
	require.Equal(t, 1, vacancies(t, mm, a.ID))

	p, err := mm.PresenceQuery().Assistance(a.ID).Student(student.ID).One()
	require.NoError(t, err)
	require.NotNil(t, p)
	require.False(t, p.StudentPresence)
}

func TestSubscribe_NoVacancies(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)
	s1 := seedUser(t, mm, "s1", course.ID)
	s2 := seedUser(t, mm, "s2", course.ID)

	a := seedAssistance(t, mm, owner, course.ID, "algebra", 1)

	require.NoError(t, mm.Subscribe(a.ID, s1.ID))
	require.ErrorIs(t, mm.Subscribe(a.ID, s2.ID), ErrNoVacancies)

	require.Equal(t, 0, vacancies(t, mm, a.ID))
	require.EqualValues(t, 1, mm.PresenceQuery().Assistance(a.ID).Count())
}

func TestSubscribe_Self(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)

	a := seedAssistance(t, mm, owner, course.ID, "algebra", 2)

	require.ErrorIs(t, mm.Subscribe(a.ID, owner.ID), ErrSelfSubscription)
	require.Equal(t, 2, vacancies(t, mm, a.ID))
	require.EqualValues(t, 0, mm.PresenceQuery().Assistance(a.ID).Count())
}

func TestSubscribe_Duplicate(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)
	student := seedUser(t, mm, "student", course.ID)

	a := seedAssistance(t, mm, owner, course.ID, "algebra", 2)

	require.NoError(t, mm.Subscribe(a.ID, student.ID))
	require.ErrorIs(t, mm.Subscribe(a.ID, student.ID), ErrAlreadySubscribed)
	require.Equal(t, 1, vacancies(t, mm, a.ID))
}

func TestSubscribe_NotFoundAndUnavailable(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)
	student := seedUser(t, mm, "student", course.ID)

	require.ErrorIs(t, mm.Subscribe(999, student.ID), ErrNotFound)

	a := seedAssistance(t, mm, owner, course.ID, "algebra", 2)
	require.NoError(t, mm.DisableAssistance(a.ID))

	require.ErrorIs(t, mm.Subscribe(a.ID, student.ID), ErrUnavailable)
	require.ErrorIs(t, mm.Unsubscribe(a.ID, student.ID), ErrUnavailable)
}

func TestSubscribe_Concurrent(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)
	s1 := seedUser(t, mm, "s1", course.ID)
	s2 := seedUser(t, mm, "s2", course.ID)

	a := seedAssistance(t, mm, owner, course.ID, "algebra", 1)

	var wg sync.WaitGroup

	errs := make([]error, 2)

	for i, uid := range []uint{s1.ID, s2.ID} {
		wg.Add(1)

		go func(i int, uid uint) {
			defer wg.Done()
			errs[i] = mm.Subscribe(a.ID, uid)
		}(i, uid)
	}

	wg.Wait()

	// exactly one of the two gets the last seat
	if errs[0] == nil {
		require.ErrorIs(t, errs[1], ErrNoVacancies)
	} else {
		require.ErrorIs(t, errs[0], ErrNoVacancies)
		require.NoError(t, errs[1])
	}

	require.Equal(t, 0, vacancies(t, mm, a.ID))
	require.EqualValues(t, 1, mm.PresenceQuery().Assistance(a.ID).Count())
}

func TestUnsubscribe(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)
	student := seedUser(t, mm, "student", course.ID)

	a := seedAssistance(t, mm, owner, course.ID, "algebra", 2)

	require.NoError(t, mm.Subscribe(a.ID, student.ID))
	require.Equal(t, 1, vacancies(t, mm, a.ID))

	require.NoError(t, mm.Unsubscribe(a.ID, student.ID))
	require.Equal(t, 2, vacancies(t, mm, a.ID))

	require.ErrorIs(t, mm.Unsubscribe(a.ID, student.ID), ErrNotSubscribed)
	require.Equal(t, 2, vacancies(t, mm, a.ID))
}

func TestVacancyBounds(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)

	a := seedAssistance(t, mm, owner, course.ID, "algebra", 2)

	students := []*model.User{
		seedUser(t, mm, "s1", course.ID),
		seedUser(t, mm, "s2", course.ID),
		seedUser(t, mm, "s3", course.ID),
	}

	check := func() {
		v := vacancies(t, mm, a.ID)
		require.GreaterOrEqual(t, v, 0)
		require.LessOrEqual(t, v, a.TotalVacancies)
	}

	for _, s := range students {
		_ = mm.Subscribe(a.ID, s.ID)
		check()
	}

	for _, s := range students {
		_ = mm.Unsubscribe(a.ID, s.ID)
		check()
	}

	require.Equal(t, 2, vacancies(t, mm, a.ID))
}

func TestGivePresence_Idempotent(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)
	student := seedUser(t, mm, "student", course.ID)

	a := seedAssistance(t, mm, owner, course.ID, "algebra", 2)

	require.ErrorIs(t, mm.GivePresence(a.ID, student.ID), ErrNotSubscribed)

	require.NoError(t, mm.Subscribe(a.ID, student.ID))

	require.NoError(t, mm.GivePresence(a.ID, student.ID))
	require.NoError(t, mm.GivePresence(a.ID, student.ID))

	p, err := mm.PresenceQuery().Assistance(a.ID).Student(student.ID).One()
	require.NoError(t, err)
	require.NotNil(t, p)
	require.True(t, p.StudentPresence)
}

func TestSubscribers(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)
	student := seedUser(t, mm, "student", course.ID)
	stranger := seedUser(t, mm, "stranger", course.ID)

	a := seedAssistance(t, mm, owner, course.ID, "algebra", 2)
	require.NoError(t, mm.Subscribe(a.ID, student.ID))

	fields := []string{"user.full_name", "presence.student_presence"}

	res, err := mm.Subscribers(a.ID, owner.ID, fields)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.NotNil(t, res[0].Student)
	require.Equal(t, "student", res[0].Student.FullName)

	// a subscriber may look as well
	_, err = mm.Subscribers(a.ID, student.ID, fields)
	require.NoError(t, err)

	_, err = mm.Subscribers(a.ID, stranger.ID, fields)
	require.ErrorIs(t, err, ErrNotAllowed)

	_, err = mm.Subscribers(a.ID, owner.ID, nil)
	require.ErrorIs(t, err, ErrEmptyProjection)

	_, err = mm.Subscribers(a.ID, owner.ID, []string{"user.password"})
	require.ErrorIs(t, err, ErrFieldNotAllowed)

	_, err = mm.Subscribers(999, owner.ID, fields)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateAssistance_Rollback(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)

	a := &model.Assistance{
		OwnerID: owner.ID, CourseID: course.ID,
		Title:          "algebra",
		TotalVacancies: 2, AvailableVacancies: 2, Available: true,
	}

	// latitude is out of range, the address insert violates its check
	addr := &model.Address{Street: "nowhere", Latitude: 200}

	require.Error(t, mm.CreateAssistance(a, addr, nil))

	res, err := mm.AssistanceQuery().Get()
	require.NoError(t, err)
	require.Empty(t, res, "failed address creation must roll back the assistance row")
}

func TestDeleteAssistance(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)
	student := seedUser(t, mm, "student", course.ID)

	a := seedAssistance(t, mm, owner, course.ID, "algebra", 2)
	require.NoError(t, mm.Subscribe(a.ID, student.ID))

	require.NoError(t, mm.DeleteAssistance(a.ID))

	got, err := mm.AssistanceQuery().Id(a.ID).One()
	require.NoError(t, err)
	require.Nil(t, got)

	require.EqualValues(t, 0, mm.PresenceQuery().Assistance(a.ID).Count())
}

func TestDisableAssistance(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)

	a := seedAssistance(t, mm, owner, course.ID, "algebra", 2)

	require.NoError(t, mm.DisableAssistance(a.ID))

	got, err := mm.AssistanceQuery().Id(a.ID).One()
	require.NoError(t, err)
	require.NotNil(t, got)
	require.False(t, got.Available)
	require.NotNil(t, got.SuspendedDate)

	require.ErrorIs(t, mm.DisableAssistance(999), ErrNotFound)
}

func TestUpdateAssistance(t *testing.T) {
	mm := getTestDatabase(t)
	course := seedCourse(t, mm, "math", false)
	owner := seedUser(t, mm, "owner", course.ID)

	a := seedAssistance(t, mm, owner, course.ID, "algebra", 2)

	require.NoError(t, mm.UpdateAssistance(a.ID, map[string]any{"title": "geometry"}))

	got, err := mm.AssistanceQuery().Id(a.ID).One()
	require.NoError(t, err)
	require.Equal(t, "geometry", got.Title)

	require.ErrorIs(t, mm.UpdateAssistance(a.ID, map[string]any{"nope": 1}), ErrUnknownField)
	require.ErrorIs(t, mm.UpdateAssistance(999, map[string]any{"title": "x"}), ErrNotFound)
}
