package api

import (
	"log"
	"strconv"
	"strings"

	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/cache"
	"github.com/example/taskboard/modules/tasks"
	"github.com/example/taskboard/modules/weather"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	auth        auth.AuthPort
	tasks       tasks.TaskPort
	weather     weather.WeatherPort
	cacheModule *cache.Module
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authAdapter auth.AuthPort, taskAdapter tasks.TaskPort, weatherAdapter weather.WeatherPort, cacheModule *cache.Module) *Handlers {
	return &Handlers{
		auth:        authAdapter,
		tasks:       taskAdapter,
		weather:     weatherAdapter,
		cacheModule: cacheModule,
	}
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	resp, err := h.auth.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return internalError(c, err)
	}
	if resp.Error != "" {
		return h.authErrorResponse(c, resp.Error)
	}

	return c.Status(fiber.StatusCreated).JSON(RegisterResponse{
		ID:        resp.User.ID,
		Email:     resp.User.Email,
		CreatedAt: resp.User.CreatedAt,
		TokenResponse: TokenResponse{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			ExpiresIn:    resp.ExpiresIn,
			TokenType:    resp.TokenType,
		},
	})
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	resp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return internalError(c, err)
	}
	if resp.Error != "" {
		return h.authErrorResponse(c, resp.Error)
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// Refresh handles token refresh.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	resp, err := h.auth.RefreshToken(c.UserContext(), req.RefreshToken)
	if err != nil {
		return internalError(c, err)
	}
	if resp.Error != "" {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired refresh token",
		})
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// Profile returns the authenticated user's profile.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return unauthorized(c)
	}

	resp, err := h.auth.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return internalError(c, err)
	}
	if resp.Error != "" {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "User not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(ProfileResponse{
		ID:        resp.User.ID,
		Email:     resp.User.Email,
		CreatedAt: resp.User.CreatedAt,
	})
}

// CreateTask handles task creation.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return unauthorized(c)
	}

	var body CreateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.tasks.Create(c.UserContext(), &tasks.CreateTaskRequest{
		UserID:      claims.UserID,
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		Status:      body.Status,
		DueDate:     body.DueDate,
		AssignedTo:  body.AssignedTo,
		Tags:        body.Tags,
	})
	if err != nil {
		return h.taskErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetTask returns a single task visible to the authenticated user.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return unauthorized(c)
	}

	resp, err := h.tasks.Get(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return h.taskErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// UpdateTask applies a partial update to a task.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return unauthorized(c)
	}

	var body UpdateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.tasks.Update(c.UserContext(), &tasks.UpdateTaskRequest{
		UserID:      claims.UserID,
		TaskID:      c.Params("id"),
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		Status:      body.Status,
		DueDate:     body.DueDate,
		AssignedTo:  body.AssignedTo,
		Tags:        body.Tags,
	})
	if err != nil {
		return h.taskErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// CompleteTask marks a task as completed.
func (h *Handlers) CompleteTask(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return unauthorized(c)
	}

	resp, err := h.tasks.Complete(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return h.taskErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// DeleteTask removes a task. Only the creator may delete.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return unauthorized(c)
	}

	resp, err := h.tasks.Delete(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return h.taskErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// ListTasks returns the authenticated user's visible tasks, filtered and
// sorted per query parameters.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return unauthorized(c)
	}

	resp, err := h.tasks.List(c.UserContext(), &tasks.ListTasksRequest{
		UserID:   claims.UserID,
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Order:    c.Query("order"),
	})
	if err != nil {
		return h.taskErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// TaskStats returns task statistics for the authenticated user.
func (h *Handlers) TaskStats(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return unauthorized(c)
	}

	resp, err := h.tasks.Stats(c.UserContext(), claims.UserID)
	if err != nil {
		return h.taskErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// Dashboard returns the dashboard summary for the authenticated user.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return unauthorized(c)
	}

	resp, err := h.tasks.Dashboard(c.UserContext(), claims.UserID)
	if err != nil {
		return h.taskErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// CurrentWeather returns current weather for a city.
func (h *Handlers) CurrentWeather(c *fiber.Ctx) error {
	city := c.Params("city")
	resp, err := h.weather.Current(c.UserContext(), city)
	if err != nil {
		return internalError(c, err)
	}
	if resp.Error != "" {
		return h.weatherErrorResponse(c, resp.Error)
	}
	return c.Status(fiber.StatusOK).JSON(CurrentWeatherBody{
		Weather:   resp.Weather,
		FromCache: resp.FromCache,
	})
}

// Forecast returns the forecast for a city. The days query parameter
// defaults to 5 and invalid values fall back to the default.
func (h *Handlers) Forecast(c *fiber.Ctx) error {
	city := c.Params("city")

	days := weather.DefaultForecastDays
	if raw := c.Query("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			days = parsed
		}
	}
	days = weather.NormalizeForecastDays(days)

	resp, err := h.weather.Forecast(c.UserContext(), city, days)
	if err != nil {
		return internalError(c, err)
	}
	if resp.Error != "" {
		return h.weatherErrorResponse(c, resp.Error)
	}
	return c.Status(fiber.StatusOK).JSON(ForecastBody{
		City:     city,
		Days:     days,
		Forecast: resp.Forecast,
	})
}

// InvalidateWeather evicts the cached snapshot for a city so the next
// lookup fetches fresh.
func (h *Handlers) InvalidateWeather(c *fiber.Ctx) error {
	resp, err := h.weather.Invalidate(c.UserContext(), c.Params("city"))
	if err != nil {
		return internalError(c, err)
	}
	if resp.Error != "" {
		return h.weatherErrorResponse(c, resp.Error)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// CacheStats returns weather cache counters.
func (h *Handlers) CacheStats(c *fiber.Ctx) error {
	store := h.cacheModule.Cache()
	if store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "service_unavailable",
			Message: "Cache not available",
		})
	}
	return c.Status(fiber.StatusOK).JSON(store.GetStats())
}

// ResetCacheStats zeroes the weather cache counters and returns the
// fresh snapshot.
func (h *Handlers) ResetCacheStats(c *fiber.Ctx) error {
	store := h.cacheModule.Cache()
	if store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "service_unavailable",
			Message: "Cache not available",
		})
	}
	store.ResetStats()
	return c.Status(fiber.StatusOK).JSON(store.GetStats())
}

// authErrorResponse maps auth service error messages to HTTP responses.
func (h *Handlers) authErrorResponse(c *fiber.Ctx, msg string) error {
	switch {
	case strings.Contains(msg, "invalid email or password"),
		strings.Contains(msg, "invalid or expired"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid email or password",
		})
	case strings.Contains(msg, "already exists"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "User with this email already exists",
		})
	case strings.Contains(msg, "invalid email format"),
		strings.Contains(msg, "password must be"):
		return badRequest(c, msg)
	default:
		log.Printf("[api] Auth error: %s", msg)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// taskErrorResponse maps task service errors to HTTP responses. Service
// errors cross the request-reply boundary as strings, so matching is by
// message.
func (h *Handlers) taskErrorResponse(c *fiber.Ctx, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "task not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case strings.Contains(msg, "operation not allowed"):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error:   "forbidden",
			Message: "Only the task creator may perform this operation",
		})
	case strings.Contains(msg, "is required"),
		strings.Contains(msg, "invalid priority"),
		strings.Contains(msg, "invalid status"),
		strings.Contains(msg, "cannot be empty"):
		return badRequest(c, msg)
	default:
		log.Printf("[api] Task error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// weatherErrorResponse maps weather service error messages to HTTP
// responses, preserving the message verbatim.
func (h *Handlers) weatherErrorResponse(c *fiber.Ctx, msg string) error {
	switch msg {
	case weather.ErrCityNotFound.Error():
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: msg,
		})
	case weather.ErrForecastNotAvailable.Error():
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: msg,
		})
	default:
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "service_unavailable",
			Message: weather.ErrServiceUnavailable.Error(),
		})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: msg,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: "User not authenticated",
	})
}

func internalError(c *fiber.Ctx, err error) error {
	log.Printf("[api] Internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
