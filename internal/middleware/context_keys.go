package middleware

import "github.com/gin-gonic/gin"

// actorIDKey is the key used to store the authenticated caller's ID on the
// request context. Callers are services, so "actor" rather than "user".
const actorIDKey = contextKey("actorID")

// GetActorIDFromContext retrieves the authenticated actor ID from the Gin
// context. It returns the actor ID and a boolean indicating if it was found.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	actorIDVal := c.Request.Context().Value(actorIDKey)
	if actorIDVal == nil {
		return "", false
	}

	actorID, ok := actorIDVal.(string)
	if !ok {
		// This should not happen if the auth middleware sets it correctly
		return "", false
	}

	return actorID, true
}
