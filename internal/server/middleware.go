package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const contextUserIDKey = "user_id"

// AuthRequired authenticates the session cookie and stashes the user id
// on the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.identitySvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, session.UserID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) (snowflake.ID, bool) {
	v, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(snowflake.ID)
	return id, ok
}

// mustUserID is for handlers behind AuthRequired: a missing id there is
// a wiring bug, surfaced as unauthorized.
func mustUserID(c *gin.Context) (snowflake.ID, bool) {
	id, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
	}
	return id, ok
}

// currentUserIDFromCookie resolves the session cookie when one is
// present and valid, without requiring it. Signup uses this to upgrade
// an anonymous identity in place.
func currentUserIDFromCookie(s *Server, c *gin.Context) *snowflake.ID {
	token, ok := s.sessions.ReadToken(c)
	if !ok {
		return nil
	}
	session, err := s.identitySvc.Authenticate(c.Request.Context(), token)
	if err != nil {
		return nil
	}
	return &session.UserID
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, ErrNotFound
	}
	return id, nil
}
