package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StaffIDKey is the gin context key carrying the authenticated staff ID
const StaffIDKey = "staff_id"

// StaffHeader is the header the upstream auth proxy sets after verifying
// credentials. Credential checking itself is not this service's concern.
const StaffHeader = "X-Staff-ID"

// StaffIdentity extracts the staff UUID from the X-Staff-ID header and
// stores it in the context. Requests without a parseable staff ID pass
// through; handlers that record mutations reject them.
func StaffIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(StaffHeader); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				c.Set(StaffIDKey, id.String())
			}
		}
		c.Next()
	}
}

// GetStaffID returns the staff UUID set by StaffIdentity, or uuid.Nil
func GetStaffID(c *gin.Context) uuid.UUID {
	raw := c.GetString(StaffIDKey)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
