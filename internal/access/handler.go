package access

import (
	"errors"

	"chantier_backend/internal/common"
	"chantier_backend/internal/middleware"
	"chantier_backend/internal/profile"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AssignRoleRequest defines the body of an explicit role assignment.
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=professional client"`
}

// Handler exposes administrative access operations.
type Handler struct {
	resolver *Resolver
	logger   *zap.Logger
}

// NewHandler creates a new admin access handler.
func NewHandler(resolver *Resolver, logger *zap.Logger) *Handler {
	return &Handler{resolver: resolver, logger: logger.Named("access_handler")}
}

// RegisterRoutes mounts the admin routes behind authentication and the professional role guard.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	adminGroup := router.Group("/admin/profiles", authMW, middleware.RequireRole(h.resolver, h.logger, profile.RoleProfessional))
	{
		adminGroup.POST("/:uid/resolve", h.resolve)
		adminGroup.PUT("/:uid/role", h.assignRole)
	}
}

func (h *Handler) resolve(c *gin.Context) {
	uid := c.Param("uid")
	resolved := h.resolver.ResolveProfile(c.Request.Context(), uid)
	if resolved == nil {
		common.RespondWithError(c, common.ErrNotFound.WithDetails("Profile could not be resolved for this uid."))
		return
	}
	common.RespondOK(c, "Profile resolved.", resolved)
}

func (h *Handler) assignRole(c *gin.Context) {
	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Assign role: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	actor := ""
	if p, ok := middleware.GetPrincipalFromContext(c); ok {
		actor = p.UID
	}
	resolved, err := h.resolver.AssignRole(c.Request.Context(), c.Param("uid"), profile.Role(req.Role), actor)
	if err != nil {
		h.logger.Warn("Assign role failed", zap.String("uid", c.Param("uid")), zap.Error(err))
		common.RespondWithError(c, identityToAPIError(err))
		return
	}
	common.RespondOK(c, "Role assigned.", resolved)
}
