package model

import "time"

// Encoder turns an internal numeric id into the opaque token handed to
// clients. The converters below never expose a raw id.
type Encoder func(id uint) string

type AssistanceDTO struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Date               time.Time  `json:"date"`
	TotalVacancies     int        `json:"totalVacancies"`
	AvailableVacancies int        `json:"availableVacancies"`
	Available          bool       `json:"available"`
	SuspendedDate      *time.Time `json:"suspendedDate,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	Tags               []string   `json:"tags,omitempty"`

	Assistant        *UserDTO    `json:"assistant,omitempty"`
	AssistantCourse  *CourseDTO  `json:"assistantCourse,omitempty"`
	AssistanceCourse *CourseDTO  `json:"assistanceCourse,omitempty"`
	Subject          *SubjectDTO `json:"subject,omitempty"`
	Address          *AddressDTO `json:"address,omitempty"`
}

type UserDTO struct {
	ID                string    `json:"id"`
	FullName          string    `json:"fullName"`
	Email             string    `json:"email"`
	AssistantStars    float64   `json:"assistantStars"`
	VerifiedAssistant bool      `json:"verifiedAssistant"`
	CreatedAt         time.Time `json:"createdAt"`
}

type CourseDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SubjectDTO struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AddressDTO struct {
	ID           string  `json:"id"`
	AssistanceID string  `json:"assistanceId"`
	Cep          string  `json:"cep"`
	Street       string  `json:"street"`
	Number       string  `json:"number"`
	Complement   string  `json:"complement"`
	Reference    string  `json:"reference"`
	Nickname     string  `json:"nickname"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

type SubscriberDTO struct {
	ID              string   `json:"id"`
	StudentPresence bool     `json:"studentPresence"`
	Student         *UserDTO `json:"student,omitempty"`
}

// ToAssistanceDTO copies a row into a response shape. Every nested
// value is built fresh, so two rows sharing a relation never alias.
func ToAssistanceDTO(a *Assistance, enc Encoder) *AssistanceDTO {
	if a == nil {
		return nil
	}

	dto := &AssistanceDTO{
		ID:                 enc(a.ID),
		Title:              a.Title,
		Description:        a.Description,
		Date:               a.Date,
		TotalVacancies:     a.TotalVacancies,
		AvailableVacancies: a.AvailableVacancies,
		Available:          a.Available,
		SuspendedDate:      a.SuspendedDate,
		CreatedAt:          a.CreatedAt,
	}

	for _, t := range a.Tags {
		dto.Tags = append(dto.Tags, t.Name)
	}

	if a.Owner != nil {
		dto.Assistant = ToUserDTO(a.Owner, enc)
		dto.AssistantCourse = ToCourseDTO(a.Owner.Course, enc)
	}

	if a.Course != nil {
		dto.AssistanceCourse = ToCourseDTO(a.Course, enc)
		dto.Subject = ToSubjectDTO(a.Course.Subject, enc)
	}

	dto.Address = ToAddressDTO(a.Address, enc)

	return dto
}

func ToUserDTO(u *User, enc Encoder) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:                enc(u.ID),
		FullName:          u.FullName,
		Email:             u.Email,
		AssistantStars:    u.AssistantStars,
		VerifiedAssistant: u.VerifiedAssistant,
		CreatedAt:         u.CreatedAt,
	}
}

func ToCourseDTO(c *Course, enc Encoder) *CourseDTO {
	if c == nil {
		return nil
	}

	return &CourseDTO{
		ID:          enc(c.ID),
		Name:        c.Name,
		Description: c.Description,
	}
}

func ToSubjectDTO(s *Subject, enc Encoder) *SubjectDTO {
	if s == nil {
		return nil
	}

	return &SubjectDTO{
		ID:          enc(s.ID),
		CourseID:    enc(s.CourseID),
		Name:        s.Name,
		Description: s.Description,
	}
}

func ToAddressDTO(a *Address, enc Encoder) *AddressDTO {
	if a == nil {
		return nil
	}

	return &AddressDTO{
		ID:           enc(a.ID),
		AssistanceID: enc(a.AssistanceID),
		Cep:          a.Cep,
		Street:       a.Street,
		Number:       a.Number,
		Complement:   a.Complement,
		Reference:    a.Reference,
		Nickname:     a.Nickname,
		Latitude:     a.Latitude,
		Longitude:    a.Longitude,
	}
}

func ToSubscriberDTO(p *PresenceEntry, enc Encoder) *SubscriberDTO {
	if p == nil {
		return nil
	}

	return &SubscriberDTO{
		ID:              enc(p.ID),
		StudentPresence: p.StudentPresence,
		Student:         ToUserDTO(p.Student, enc),
	}
}
