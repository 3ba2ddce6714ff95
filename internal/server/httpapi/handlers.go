package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/devlink/internal/common"
	"github.com/dmitrijs2005/devlink/internal/logging"
	"github.com/dmitrijs2005/devlink/internal/server/auth"
	"github.com/dmitrijs2005/devlink/internal/server/posts"
	"github.com/dmitrijs2005/devlink/internal/server/users"
)

type Handler struct {
	users   *users.Service
	posts   *posts.Service
	limiter *auth.LoginLimiter
	logger  logging.Logger
}

func NewHandler(us *users.Service, ps *posts.Service, logger logging.Logger) *Handler {
	return &Handler{
		users:   us,
		posts:   ps,
		limiter: auth.NewLoginLimiter(),
		logger:  logger.With("module", "httpapi"),
	}
}

// Ping answers the unauthenticated root endpoint.
func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "devlink api")
}

// Register handles POST /api/users.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, singleError(msgInvalidBody))
		return
	}

	if errs := runChecks(req.checks()); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Errors: errs})
		return
	}

	token, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			c.JSON(http.StatusBadRequest, singleError(msgUserExists))
			return
		}
		h.logger.Error(c.Request.Context(), "registration failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, singleError(msgServerError))
		return
	}

	h.logger.Info(c.Request.Context(), "user registered", "email", req.Email)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Login handles POST /api/login. Unknown email and wrong password produce
// byte-identical responses.
func (h *Handler) Login(c *gin.Context) {
	ip := c.ClientIP()
	if retryAfter := h.limiter.RetryAfter(ip); retryAfter > 0 {
		c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
		c.JSON(http.StatusTooManyRequests, singleError(msgTooManyAttempts))
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, singleError(msgInvalidBody))
		return
	}

	if errs := runChecks(req.checks()); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Errors: errs})
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			h.limiter.RecordFailure(ip)
			c.JSON(http.StatusBadRequest, singleError(msgInvalidCredentials))
			return
		}
		h.logger.Error(c.Request.Context(), "login failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, singleError(msgServerError))
		return
	}

	h.limiter.Reset(ip)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me handles GET /api/auth: it enriches the gate's resolved subject id into
// the full user record.
func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString(ContextUserIDKey)

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, singleError(msgUserNotFound))
			return
		}
		h.logger.Error(c.Request.Context(), "identity fetch failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, singleError(msgServerError))
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreatePost handles POST /api/posts. The owner is stamped from the gate's
// resolved subject id, never from the body.
func (h *Handler) CreatePost(c *gin.Context) {
	userID := c.GetString(ContextUserIDKey)

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, singleError(msgInvalidBody))
		return
	}

	if errs := runChecks(req.checks()); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Errors: errs})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), userID, req.Title, req.Body)
	if err != nil {
		h.logger.Error(c.Request.Context(), "post creation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, singleError(msgServerError))
		return
	}

	c.JSON(http.StatusOK, post)
}
