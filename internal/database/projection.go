package database

import (
	"strings"
)

// JoinSet is the set of relations a projection pulls in.
type JoinSet uint8

const (
	JoinAssistant JoinSet = 1 << iota
	JoinAssistanceCourse
	JoinAssistantCourse
	JoinAddress
	JoinSubject
)

func (s JoinSet) Has(j JoinSet) bool {
	return s&j != 0
}

func AllJoins() JoinSet {
	return JoinAssistant | JoinAssistanceCourse | JoinAssistantCourse | JoinAddress | JoinSubject
}

// Projectable sub-entities, keyed by the namespace segment callers use in
// dotted field names.
var relationJoins = map[string]JoinSet{
	"assistant":        JoinAssistant,
	"assistanceCourse": JoinAssistanceCourse,
	"assistantCourse":  JoinAssistantCourse,
	"address":          JoinAddress,
	"subject":          JoinSubject,
}

var assistanceColumns = map[string]bool{
	"id":                  true,
	"owner_id":            true,
	"course_id":           true,
	"title":               true,
	"description":         true,
	"date":                true,
	"total_vacancies":     true,
	"available_vacancies": true,
	"available":           true,
	"suspended_date":      true,
	"created_at":          true,
}

var courseColumns = map[string]bool{
	"id":          true,
	"name":        true,
	"description": true,
}

var relationColumns = map[string]map[string]bool{
	"assistant": {
		"id":                 true,
		"course_id":          true,
		"full_name":          true,
		"email":              true,
		"assistant_stars":    true,
		"verified_assistant": true,
		"created_at":         true,
	},
	"assistanceCourse": courseColumns,
	"assistantCourse":  courseColumns,
	"subject": {
		"id":          true,
		"course_id":   true,
		"name":        true,
		"description": true,
	},
	"address": {
		"id":            true,
		"assistance_id": true,
		"cep":           true,
		"street":        true,
		"number":        true,
		"complement":    true,
		"reference":     true,
		"nickname":      true,
		"latitude":      true,
		"longitude":     true,
	},
}

// ResolveJoins inspects a projection and decides which joins the query
// needs. Prefixes match whole namespace segments only, so a field name
// that merely contains a relation name does not pull the join in. An
// empty projection means the eager default: every join.
func ResolveJoins(fields []string) (JoinSet, error) {
	if len(fields) == 0 {
		return AllJoins(), nil
	}

	var joins JoinSet

	for _, f := range fields {
		prefix, col, ok := strings.Cut(f, ".")

		if !ok {
			if !assistanceColumns[f] {
				return 0, ErrUnknownField
			}

			continue
		}

		if prefix == "assistance" {
			if !assistanceColumns[col] {
				return 0, ErrUnknownField
			}

			continue
		}

		j, found := relationJoins[prefix]
		if !found || !relationColumns[prefix][col] {
			return 0, ErrUnknownField
		}

		joins |= j
	}

	// the owner's course hangs off the owner join, the subject off the
	// assistance course join
	if joins.Has(JoinAssistantCourse) {
		joins |= JoinAssistant
	}

	if joins.Has(JoinSubject) {
		joins |= JoinAssistanceCourse
	}

	return joins, nil
}

// FilterColumn maps a caller-supplied filter or sort column onto a
// pre-approved qualified identifier. Caller strings never reach SQL.
func FilterColumn(name string) (string, error) {
	name = strings.TrimPrefix(name, "assistance.")

	if !assistanceColumns[name] {
		return "", ErrUnknownField
	}

	return "assistances." + name, nil
}

// Fields a subscriber listing may project. Everything else on the user
// row stays private to its owner.
var subscriberFields = map[string]bool{
	"user.id":                   true,
	"user.full_name":            true,
	"user.email":                true,
	"user.created_at":           true,
	"user.assistant_stars":      true,
	"user.verified_assistant":   true,
	"presence.id":               true,
	"presence.student_presence": true,
}

func ValidateSubscriberFields(fields []string) error {
	if len(fields) == 0 {
		return ErrEmptyProjection
	}

	for _, f := range fields {
		if !subscriberFields[f] {
			return ErrFieldNotAllowed
		}
	}

	return nil
}
