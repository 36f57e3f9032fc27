package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/assistapp/assistance/internal/model"
)

type OrderSpec struct {
	Column    string
	Direction string
}

// FilterOptions is the optional filter bundle accepted by the listing
// and search operations.
type FilterOptions struct {
	Filter    map[string]string
	Limit     int
	Offset    int
	OrderBy   []OrderSpec
	Available *bool
}

type AssistanceQuery struct {
	Query[model.Assistance]
	id        uint
	ownerID   uint
	available *bool
	filter    map[string]string
	titleLike string
	terms     []string
	joins     JoinSet
	withTags  bool
}

func NewAssistanceQuery(db *gorm.DB) *AssistanceQuery {
	return &AssistanceQuery{
		Query: Query[model.Assistance]{
			db:    db,
			order: "assistances.id DESC",
		},
	}
}

func (q *AssistanceQuery) Id(id uint) *AssistanceQuery {
	if q == nil {
		return nil
	}

	q.id = id

	return q
}

func (q *AssistanceQuery) Owner(id uint) *AssistanceQuery {
	if q == nil {
		return nil
	}

	q.ownerID = id

	return q
}

// Available sets the tri-state availability predicate: nil adds nothing,
// an explicit value filters on it.
func (q *AssistanceQuery) Available(v *bool) *AssistanceQuery {
	if q == nil {
		return nil
	}

	q.available = v

	return q
}

func (q *AssistanceQuery) Filter(filter map[string]string) *AssistanceQuery {
	if q == nil {
		return nil
	}

	for name, val := range filter {
		col, err := FilterColumn(name)
		if err != nil {
			q.err = err

			return q
		}

		if q.filter == nil {
			q.filter = make(map[string]string)
		}

		q.filter[col] = val
	}

	return q
}

func (q *AssistanceQuery) TitleLike(s string) *AssistanceQuery {
	if q == nil {
		return nil
	}

	q.titleLike = s

	return q
}

// Search adds an unanchored containment match of every term against the
// tag name, the title and the description, OR'd into one group.
func (q *AssistanceQuery) Search(terms []string) *AssistanceQuery {
	if q == nil {
		return nil
	}

	q.terms = terms

	return q
}

func (q *AssistanceQuery) Joins(joins JoinSet) *AssistanceQuery {
	if q == nil {
		return nil
	}

	q.joins = joins

	return q
}

func (q *AssistanceQuery) WithTags() *AssistanceQuery {
	if q == nil {
		return nil
	}

	q.withTags = true

	return q
}

func (q *AssistanceQuery) Page(limit, offset int) *AssistanceQuery {
	if q == nil {
		return nil
	}

	q.limit = limit
	q.offset = offset

	return q
}

// OrderBy honors only the first entry of the sort spec. Single sort key
// is the documented listing contract, additional entries are ignored.
func (q *AssistanceQuery) OrderBy(specs []OrderSpec) *AssistanceQuery {
	if q == nil || len(specs) == 0 {
		return q
	}

	col, err := FilterColumn(specs[0].Column)
	if err != nil {
		q.err = err

		return q
	}

	q.order = col + " " + sortDirection(specs[0].Direction)

	return q
}

// OrderById keeps the default id sort but with the caller's direction.
func (q *AssistanceQuery) OrderById(direction string) *AssistanceQuery {
	if q == nil {
		return nil
	}

	q.order = "assistances.id " + sortDirection(direction)

	return q
}

// Apply composes an options bundle onto the query: equality filters,
// availability, the page window and the sort key.
func (q *AssistanceQuery) Apply(args *FilterOptions) *AssistanceQuery {
	if q == nil || args == nil {
		return q
	}

	return q.Filter(args.Filter).
		Available(args.Available).
		Page(args.Limit, args.Offset).
		OrderBy(args.OrderBy)
}

func (q *AssistanceQuery) where() *gorm.DB {
	tx := q.db

	if q.joins.Has(JoinAssistant) {
		tx = tx.InnerJoins("Owner")
	}

	if q.joins.Has(JoinAssistanceCourse) {
		tx = tx.Joins("Course")
	}

	if q.joins.Has(JoinAssistantCourse) {
		tx = tx.Joins("Owner.Course")
	}

	if q.joins.Has(JoinAddress) {
		tx = tx.Joins("Address")
	}

	if q.joins.Has(JoinSubject) {
		tx = tx.Joins("Course.Subject")
	}

	if q.withTags {
		tx = tx.Preload("Tags")
	}

	if q.id != 0 {
		tx = tx.Where("assistances.id = ?", q.id)
	}

	if q.ownerID != 0 {
		tx = tx.Where("assistances.owner_id = ?", q.ownerID)
	}

	if q.available != nil {
		tx = tx.Where("assistances.available = ?", *q.available)
	}

	for col, val := range q.filter {
		tx = tx.Where(col+" = ?", val)
	}

	if q.titleLike != "" {
		tx = tx.Where("assistances.title LIKE ?", like(q.titleLike))
	}

	if len(q.terms) > 0 {
		tx = tx.Joins("LEFT JOIN assistance_tags ON assistance_tags.assistance_id = assistances.id").
			Joins("LEFT JOIN tags ON tags.id = assistance_tags.tag_id").
			Where(q.termGroup()).
			Distinct()
	}

	return tx
}

// termGroup builds one parenthesized OR-group over all search terms,
// which where() then ANDs with the other predicates.
func (q *AssistanceQuery) termGroup() *gorm.DB {
	ndb := q.db.Session(&gorm.Session{NewDB: true})

	var group *gorm.DB

	for _, term := range q.terms {
		p := like(term)

		cond := ndb.Where("tags.name LIKE ?", p).
			Or("assistances.title LIKE ?", p).
			Or("assistances.description LIKE ?", p)

		if group == nil {
			group = cond
		} else {
			group = group.Or(cond)
		}
	}

	return group
}

func (q *AssistanceQuery) Get() ([]*model.Assistance, error) {
	if q.err != nil {
		return nil, q.err
	}

	return q.get(q.where().Model(&model.Assistance{}))
}

func (q *AssistanceQuery) One() (*model.Assistance, error) {
	if q.err != nil {
		return nil, q.err
	}

	return q.one(q.where().Model(&model.Assistance{}))
}

func (q *AssistanceQuery) Update(updates map[string]any) error {
	if q.err != nil {
		return q.err
	}

	return q.updateOrError(q.where().Model(&model.Assistance{}), updates)
}

func like(s string) string {
	return "%" + s + "%"
}

func sortDirection(s string) string {
	if strings.EqualFold(s, "ASC") {
		return "ASC"
	}

	return "DESC"
}
