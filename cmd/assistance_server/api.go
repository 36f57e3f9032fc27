package main

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/assistapp/assistance/internal/database"
	"github.com/assistapp/assistance/internal/model"
	"github.com/assistapp/assistance/pkg/idcodec"
	"github.com/assistapp/assistance/pkg/log"
)

type HttpAPI struct {
	f    *fiber.App
	addr string
}

func NewHttpAPI(app *App, addr string) *HttpAPI {
	api := &HttpAPI{addr: addr}

	api.f = fiber.New(fiber.Config{EnablePrintRoutes: false, DisableStartupMessage: true})

	api.f.Use(log.NewFiberLogger(&log.LoggerConfig{Name: "api", DoMetrics: true}))
	api.f.Use(getUserMiddleware(app))

	g := api.f.Group("/assistances")

	g.Get("/", getAllHandler(app))
	g.Get("/search", getSearchHandler(app))
	g.Post("/", getCreateHandler(app))
	g.Get("/:id", getByIdHandler(app))
	g.Patch("/:id", getUpdateHandler(app))
	g.Delete("/:id", getDeleteHandler(app))
	g.Post("/:id/disable", getDisableHandler(app))
	g.Post("/:id/subscribe", getSubscribeHandler(app))
	g.Delete("/:id/subscribe", getUnsubscribeHandler(app))
	g.Get("/:id/subscribers", getSubscribersHandler(app))
	g.Post("/:id/presence", getPresenceHandler(app))

	api.f.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return api
}

func (api *HttpAPI) Address() string {
	return api.addr
}

func (api *HttpAPI) Listen() error {
	return api.f.Listen(api.addr)
}

func getAllHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		fields := parseList(ctx.Query("fields"))

		joins, err := database.ResolveJoins(fields)
		if err != nil {
			return errResponse(ctx, app, err)
		}

		res, err := app.dbm.AssistanceQuery().
			Joins(joins).
			WithTags().
			Available(parseAvailable(ctx)).
			Page(ctx.QueryInt("limit"), ctx.QueryInt("offset")).
			OrderById(ctx.Query("order", "DESC")).
			Get()
		if err != nil {
			return errResponse(ctx, app, err)
		}

		return ctx.JSON(app.encodeAll(res))
	}
}

func getByIdHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := app.codec.Decode(ctx.Params("id"))
		if err != nil {
			return errResponse(ctx, app, err)
		}

		a, err := app.dbm.AssistanceQuery().
			Id(id).
			Joins(database.AllJoins()).
			WithTags().
			One()
		if err != nil {
			return errResponse(ctx, app, err)
		}

		if a == nil {
			return errResponse(ctx, app, database.ErrNotFound)
		}

		return ctx.JSON(model.ToAssistanceDTO(a, app.codec.Encode))
	}
}

func getSearchHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		terms := parseList(ctx.Query("search"))
		fields := parseList(ctx.Query("fields"))

		joins, err := database.ResolveJoins(fields)
		if err != nil {
			return errResponse(ctx, app, err)
		}

		filter, err := parseFilter(ctx.Query("filter"))
		if err != nil {
			return errResponse(ctx, app, err)
		}

		args := &database.FilterOptions{
			Filter:    filter,
			Limit:     ctx.QueryInt("limit"),
			Offset:    ctx.QueryInt("offset"),
			OrderBy:   parseOrder(ctx.Query("orderBy")),
			Available: parseAvailable(ctx),
		}

		q := app.dbm.AssistanceQuery().Joins(joins).WithTags().Apply(args)

		switch ctx.Query("q") {
		case "all", "tag":
			q = q.Search(terms)

		case "name":
			if len(terms) == 0 {
				return errResponse(ctx, app, database.ErrBadQueryMode)
			}

			q = q.TitleLike(terms[0])

		case "id":
			if len(terms) == 0 {
				return errResponse(ctx, app, database.ErrBadQueryMode)
			}

			id, err := app.codec.Decode(terms[0])
			if err != nil {
				return errResponse(ctx, app, err)
			}

			a, err := q.Id(id).One()
			if err != nil {
				return errResponse(ctx, app, err)
			}

			if a == nil {
				return errResponse(ctx, app, database.ErrNotFound)
			}

			return ctx.JSON(model.ToAssistanceDTO(a, app.codec.Encode))

		default:
			return errResponse(ctx, app, database.ErrBadQueryMode)
		}

		res, err := q.Get()
		if err != nil {
			return errResponse(ctx, app, err)
		}

		return ctx.JSON(app.encodeAll(res))
	}
}

type addressRequest struct {
	Cep        string  `json:"cep"`
	Street     string  `json:"street"`
	Number     string  `json:"number"`
	Complement string  `json:"complement"`
	Reference  string  `json:"reference"`
	Nickname   string  `json:"nickname"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

type createAssistanceRequest struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Date           time.Time      `json:"date"`
	CourseID       string         `json:"courseId"`
	TotalVacancies int            `json:"totalVacancies"`
	Tags           []string       `json:"tags"`
	Address        addressRequest `json:"address"`
}

func getCreateHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userID, ok := UserID(ctx)
		if !ok {
			return ctx.SendStatus(fiber.StatusUnauthorized)
		}

		var req createAssistanceRequest

		if err := ctx.BodyParser(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
		}

		courseID, err := app.codec.Decode(req.CourseID)
		if err != nil {
			return errResponse(ctx, app, err)
		}

		a := &model.Assistance{
			OwnerID:            userID,
			CourseID:           courseID,
			Title:              req.Title,
			Description:        req.Description,
			Date:               req.Date,
			TotalVacancies:     req.TotalVacancies,
			AvailableVacancies: req.TotalVacancies,
			Available:          true,
		}

		addr := &model.Address{
			Cep:        req.Address.Cep,
			Street:     req.Address.Street,
			Number:     req.Address.Number,
			Complement: req.Address.Complement,
			Reference:  req.Address.Reference,
			Nickname:   req.Address.Nickname,
			Latitude:   req.Address.Latitude,
			Longitude:  req.Address.Longitude,
		}

		if err := app.dbm.CreateAssistance(a, addr, req.Tags); err != nil {
			return errResponse(ctx, app, err)
		}

		return ctx.Status(fiber.StatusCreated).
			JSON(fiber.Map{"message": "assistance created", "assistanceId": app.codec.Encode(a.ID)})
	}
}

func getUpdateHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := app.codec.Decode(ctx.Params("id"))
		if err != nil {
			return errResponse(ctx, app, err)
		}

		var updates map[string]any

		if err := json.Unmarshal(ctx.Body(), &updates); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
		}

		if err := app.dbm.UpdateAssistance(id, updates); err != nil {
			return errResponse(ctx, app, err)
		}

		return ctx.JSON(fiber.Map{"message": "assistance updated"})
	}
}

func getDisableHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := app.codec.Decode(ctx.Params("id"))
		if err != nil {
			return errResponse(ctx, app, err)
		}

		if err := app.dbm.DisableAssistance(id); err != nil {
			return errResponse(ctx, app, err)
		}

		return ctx.JSON(fiber.Map{"message": "assistance suspended"})
	}
}

func getDeleteHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := app.codec.Decode(ctx.Params("id"))
		if err != nil {
			return errResponse(ctx, app, err)
		}

		if err := app.dbm.DeleteAssistance(id); err != nil {
			return errResponse(ctx, app, err)
		}

		return ctx.JSON(fiber.Map{"message": "assistance deleted"})
	}
}

func getSubscribeHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userID, ok := UserID(ctx)
		if !ok {
			return ctx.SendStatus(fiber.StatusUnauthorized)
		}

		id, err := app.codec.Decode(ctx.Params("id"))
		if err != nil {
			return errResponse(ctx, app, err)
		}

		if err := app.dbm.Subscribe(id, userID); err != nil {
			return errResponse(ctx, app, err)
		}

		return ctx.JSON(fiber.Map{"message": "user subscribed"})
	}
}

func getUnsubscribeHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userID, ok := UserID(ctx)
		if !ok {
			return ctx.SendStatus(fiber.StatusUnauthorized)
		}

		id, err := app.codec.Decode(ctx.Params("id"))
		if err != nil {
			return errResponse(ctx, app, err)
		}

		if err := app.dbm.Unsubscribe(id, userID); err != nil {
			return errResponse(ctx, app, err)
		}

		return ctx.JSON(fiber.Map{"message": "user unsubscribed"})
	}
}

func getSubscribersHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userID, ok := UserID(ctx)
		if !ok {
			return ctx.SendStatus(fiber.StatusUnauthorized)
		}

		id, err := app.codec.Decode(ctx.Params("id"))
		if err != nil {
			return errResponse(ctx, app, err)
		}

		entries, err := app.dbm.Subscribers(id, userID, parseList(ctx.Query("fields")))
		if err != nil {
			return errResponse(ctx, app, err)
		}

		res := make([]*model.SubscriberDTO, len(entries))
		for i, p := range entries {
			res[i] = model.ToSubscriberDTO(p, app.codec.Encode)
		}

		return ctx.JSON(res)
	}
}

func getPresenceHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := app.codec.Decode(ctx.Params("id"))
		if err != nil {
			return errResponse(ctx, app, err)
		}

		var body struct {
			UserCode string `json:"userCode"`
		}

		if err := ctx.BodyParser(&body); err != nil || body.UserCode == "" {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "user code is invalid"})
		}

		userID, err := app.codec.Decode(body.UserCode)
		if err != nil {
			return errResponse(ctx, app, err)
		}

		if err := app.dbm.GivePresence(id, userID); err != nil {
			return errResponse(ctx, app, err)
		}

		return ctx.JSON(fiber.Map{"message": "presence confirmed"})
	}
}

func (app *App) encodeAll(list []*model.Assistance) []*model.AssistanceDTO {
	res := make([]*model.AssistanceDTO, len(list))

	for i, a := range list {
		res[i] = model.ToAssistanceDTO(a, app.codec.Encode)
	}

	return res
}

// errResponse maps classified errors onto statuses. Infrastructure
// failures stay inside: the caller only sees a generic 500.
func errResponse(ctx *fiber.Ctx, app *App, err error) error {
	msg := fiber.Map{"message": err.Error()}

	switch {
	case errors.Is(err, idcodec.ErrInvalidID), errors.Is(err, database.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(msg)

	case errors.Is(err, database.ErrNotAllowed), errors.Is(err, database.ErrFieldNotAllowed):
		return ctx.Status(fiber.StatusUnauthorized).JSON(msg)

	case errors.Is(err, database.ErrUnavailable),
		errors.Is(err, database.ErrSelfSubscription),
		errors.Is(err, database.ErrNoVacancies),
		errors.Is(err, database.ErrAlreadySubscribed),
		errors.Is(err, database.ErrNotSubscribed),
		errors.Is(err, database.ErrUnknownField),
		errors.Is(err, database.ErrEmptyProjection),
		errors.Is(err, database.ErrBadQueryMode):
		return ctx.Status(fiber.StatusBadRequest).JSON(msg)

	default:
		app.logger.Error("request failed", "error", err.Error())

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
	}
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")

	res := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}

	return res
}

// parseAvailable keeps the filter tri-state: a missing parameter means
// no availability predicate at all.
func parseAvailable(ctx *fiber.Ctx) *bool {
	s := ctx.Query("available")

	if s == "" {
		return nil
	}

	v, err := strconv.ParseBool(s)
	if err != nil {
		v = false
	}

	return &v
}

func parseFilter(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}

	var raw map[string]any

	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, database.ErrUnknownField
	}

	res := make(map[string]string, len(raw))

	for k, v := range raw {
		switch t := v.(type) {
		case string:
			res[k] = t
		case float64:
			res[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			res[k] = strconv.FormatBool(t)
		default:
			return nil, database.ErrUnknownField
		}
	}

	return res, nil
}

// parseOrder reads a "column:direction,column:direction" sort spec. The
// query layer honors only the first entry.
func parseOrder(s string) []database.OrderSpec {
	if s == "" {
		return nil
	}

	var res []database.OrderSpec

	for _, part := range strings.Split(s, ",") {
		col, dir, _ := strings.Cut(strings.TrimSpace(part), ":")

		if col != "" {
			res = append(res, database.OrderSpec{Column: col, Direction: dir})
		}
	}

	return res
}
