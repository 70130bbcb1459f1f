package user

import (
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/wichananm65/account-service/internal/apperror"
	"github.com/wichananm65/account-service/internal/middleware"
)

// attachmentsField is the multipart field carrying profile images.
const attachmentsField = "attachments"

type Handler struct {
	service *Service
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// updateRequest has no role field: role never changes through /update.
type updateRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phoneNumber"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/info", h.info)
	r.Get("/users", h.listUsers)
	r.Delete("/delete/:userId", h.deleteUser)
	r.Put("/update", h.update)
	r.Put("/profileimage", h.profileImage)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond(c, "message", ErrInvalidBody)
	}

	created, err := h.service.Register(c.UserContext(), RegisterInput{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Password:  payload.Password,
	})
	if err != nil {
		return respond(c, "message", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    created,
	})
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond(c, "message", ErrInvalidBody)
	}

	result, err := h.service.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return respond(c, "message", err)
	}

	return c.JSON(fiber.Map{
		"message": "Sign in successful",
		"user":    result.User,
		"token":   result.Token,
	})
}

func (h *Handler) info(c *fiber.Ctx) error {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return respond(c, "message", err)
	}

	found, err := h.service.GetSelf(c.UserContext(), callerID)
	if err != nil {
		return respond(c, "message", err)
	}

	return c.JSON(fiber.Map{
		"message": "User information retrieved",
		"user":    found,
	})
}

func (h *Handler) update(c *fiber.Ctx) error {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return respond(c, "message", err)
	}

	payload := new(updateRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond(c, "message", ErrInvalidBody)
	}

	updated, err := h.service.UpdateSelf(c.UserContext(), callerID, UpdateInput{
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Email:       payload.Email,
		Password:    payload.Password,
		Address:     payload.Address,
		PhoneNumber: payload.PhoneNumber,
	})
	if err != nil {
		return respond(c, "message", err)
	}

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    updated,
	})
}

func (h *Handler) listUsers(c *fiber.Ctx) error {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return respond(c, "message", err)
	}

	users, err := h.service.ListUsers(c.UserContext(), callerID)
	if err != nil {
		return respond(c, "message", err)
	}
	return c.JSON(users)
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return respond(c, "message", err)
	}

	targetID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return respond(c, "message", ErrInvalidUserID)
	}

	if err := h.service.DeleteUser(c.UserContext(), callerID, targetID); err != nil {
		return respond(c, "message", err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// profileImage answers errors under "error" rather than "message".
func (h *Handler) profileImage(c *fiber.Ctx) error {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return respond(c, "error", err)
	}

	var uploads []Upload
	// detect multipart via header prefix; a request without a form simply
	// attaches nothing
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return respond(c, "error", ErrInvalidBody)
		}
		for _, fh := range form.File[attachmentsField] {
			fh := fh
			uploads = append(uploads, Upload{
				Filename: fh.Filename,
				Size:     fh.Size,
				Open: func() (io.ReadCloser, error) {
					f, err := fh.Open()
					if err != nil {
						return nil, err
					}
					return f, nil
				},
			})
		}
	}

	updated, err := h.service.AttachFiles(c.UserContext(), callerID, uploads)
	if err != nil {
		return respond(c, "error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Profile image updated",
		"user":    updated,
	})
}

// respond writes err as JSON under key. Internal failures are logged and
// answered with a generic message.
func respond(c *fiber.Ctx, key string, err error) error {
	kind := apperror.KindOf(err)
	if kind == apperror.Internal {
		log.Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
	}
	return c.Status(apperror.Status(kind)).JSON(fiber.Map{key: apperror.Message(err)})
}
