package session

import (
	"errors"

	"chantier_backend/internal/common"
	"chantier_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for session handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new session handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("session_handler")}
}

// RegisterRoutes sets up the authentication and session routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.login)
		authGroup.POST("/signup", h.signup)
		authGroup.POST("/reset-password", h.resetPassword)
		authGroup.POST("/logout", authMW, h.logout)
	}

	sessionGroup := router.Group("/session", authMW)
	{
		sessionGroup.GET("", h.current)
		sessionGroup.GET("/sites", h.sites)
	}
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req, "Login") {
		return
	}
	resp, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Login successful.", resp)
}

func (h *Handler) signup(c *gin.Context) {
	var req SignupRequest
	if !h.bind(c, &req, "Signup") {
		return
	}
	resp, err := h.service.Signup(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Account created.", resp)
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !h.bind(c, &req, "Reset password") {
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), req.Email); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Un email de réinitialisation a été envoyé.", nil)
}

func (h *Handler) logout(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	if err := h.service.Logout(c.Request.Context(), principal.UID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) current(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	common.RespondOK(c, "", h.service.Current(c.Request.Context(), principal))
}

func (h *Handler) sites(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	summaries, err := h.service.AccessibleSites(c.Request.Context(), principal)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", summaries)
}

// bind decodes and validates the JSON body, answering the request itself on failure.
func (h *Handler) bind(c *gin.Context, req interface{}, op string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warn(op+": Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return false
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return false
	}
	return true
}
