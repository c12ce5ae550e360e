package http

import (
	"fdpg_backend/internal/proposals/domain"
	"fdpg_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// RequestUser resolves the caller as a domain user. It aborts with 401 and
// returns false when the request is not authenticated.
func RequestUser(c *gin.Context) (domain.RequestUser, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return domain.RequestUser{}, false
	}
	return domain.NewRequestUser(identity.UserID(), identity.Email(), identity.Roles(), identity.MiiLocation()), true
}
