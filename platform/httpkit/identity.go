package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

const identityKey = "httpkit.identity"

// Identity is the authenticated caller as read from the access token.
type Identity interface {
	UserID() string
	Email() string
	Roles() []string
	// MiiLocation is empty for central roles.
	MiiLocation() string
	HasRole(role string) bool
}

type identity struct {
	userID      string
	email       string
	roles       []string
	miiLocation string
}

func (i *identity) UserID() string      { return i.userID }
func (i *identity) Email() string       { return i.email }
func (i *identity) Roles() []string     { return i.roles }
func (i *identity) MiiLocation() string { return i.miiLocation }

func (i *identity) HasRole(role string) bool {
	return slices.Contains(i.roles, role)
}

// GetIdentity returns the caller stored by AuthRequired, or nil.
func GetIdentity(c *gin.Context) Identity {
	value, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := value.(*identity)
	if id == nil {
		return nil
	}
	return id
}

// MustGetIdentity aborts with 401 and returns nil when no caller is stored.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if id == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return nil
	}
	return id
}
