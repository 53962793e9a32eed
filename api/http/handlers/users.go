package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/copsboot/api/http/middleware"
	"github.com/artem13815/copsboot/api/http/presenter"
	"github.com/artem13815/copsboot/pkg/users"
)

type UsersHandler struct {
	useCase  users.UseCase
	validate *validator.Validate
}

func NewUsersHandler(useCase users.UseCase) *UsersHandler {
	return &UsersHandler{useCase: useCase, validate: validator.New(validator.WithRequiredStructEnabled())}
}

type userRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// parseBody returns a client-facing message when the body is unusable.
func (h *UsersHandler) parseBody(c *fiber.Ctx) (userRequest, string) {
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return req, "invalid JSON payload"
	}
	if err := h.validate.Struct(req); err != nil {
		return req, "a valid email is required"
	}
	return req, ""
}

func (h *UsersHandler) fail(c *fiber.Ctx, err error) error {
	var verr users.ErrValidation
	switch {
	case errors.As(err, &verr):
		return presenter.Error(c, http.StatusBadRequest, verr.Error())
	case errors.Is(err, users.ErrInvalidID):
		return presenter.Error(c, http.StatusBadRequest, "invalid user id")
	case errors.Is(err, users.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, "user not found")
	case errors.Is(err, users.ErrEmailTaken):
		return presenter.Error(c, http.StatusConflict, "email already in use")
	default:
		return presenter.Error(c, http.StatusInternalServerError, "internal error")
	}
}

// Create registers a new user.
// @Summary Create user
// @Tags    users
// @Accept  json
// @Produce json
// @Param   input body userRequest true "user payload"
// @Security BearerAuth
// @Success 201 {object} presenter.UserResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /users [post]
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	req, msg := h.parseBody(c)
	if msg != "" {
		return presenter.Error(c, http.StatusBadRequest, msg)
	}
	u, err := h.useCase.Create(c.Context(), req.Email)
	if err != nil {
		return h.fail(c, err)
	}
	middleware.RecordUserCreated()
	c.Location("/api/v1/users/" + u.MustID().AsString())
	return presenter.JSON(c, http.StatusCreated, presenter.User(u))
}

// Get returns one user.
// @Summary Get user
// @Tags    users
// @Produce json
// @Param   id path string true "user id"
// @Security BearerAuth
// @Success 200 {object} presenter.UserResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /users/{id} [get]
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := users.ParseUserID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	u, err := h.useCase.Get(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, presenter.User(u))
}

// FindByEmail looks a user up by email, ignoring case.
// @Summary Find user by email
// @Tags    users
// @Produce json
// @Param   email query string true "email"
// @Security BearerAuth
// @Success 200 {object} presenter.UserResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /users/by-email [get]
func (h *UsersHandler) FindByEmail(c *fiber.Ctx) error {
	u, ok, err := h.useCase.FindByEmail(c.Context(), c.Query("email"))
	if err != nil {
		return h.fail(c, err)
	}
	if !ok {
		return presenter.Error(c, http.StatusNotFound, "user not found")
	}
	return presenter.JSON(c, http.StatusOK, presenter.User(u))
}

// List returns a page of users.
// @Summary List users
// @Tags    users
// @Produce json
// @Param   limit  query int false "page size (max 200)"
// @Param   offset query int false "offset"
// @Security BearerAuth
// @Success 200 {object} presenter.UserListResponse
// @Router  /users [get]
func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c, 50)
	page, err := h.useCase.List(c.Context(), limit, offset)
	if err != nil {
		return h.fail(c, err)
	}
	out := presenter.UserListResponse{
		Users:  make([]presenter.UserResponse, 0, len(page.Users)),
		Total:  page.Total,
		Limit:  limit,
		Offset: offset,
	}
	for _, u := range page.Users {
		out.Users = append(out.Users, presenter.User(u))
	}
	return presenter.JSON(c, http.StatusOK, out)
}

// Update changes a user's email.
// @Summary Change user email
// @Tags    users
// @Accept  json
// @Produce json
// @Param   id    path string      true "user id"
// @Param   input body userRequest true "user payload"
// @Security BearerAuth
// @Success 200 {object} presenter.UserResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /users/{id} [put]
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := users.ParseUserID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	req, msg := h.parseBody(c)
	if msg != "" {
		return presenter.Error(c, http.StatusBadRequest, msg)
	}
	u, err := h.useCase.ChangeEmail(c.Context(), id, req.Email)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, presenter.User(u))
}

// Delete removes a user.
// @Summary Delete user
// @Tags    users
// @Param   id path string true "user id"
// @Security BearerAuth
// @Success 204
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /users/{id} [delete]
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := users.ParseUserID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.useCase.Delete(c.Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}
