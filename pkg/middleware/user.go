package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/i18n"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderCompanyID = "X-User-Company"

	ContextKeyUserID    = "userId"
	ContextKeyUserRole  = "userRole"
	ContextKeyCompanyID = "companyId"
	ContextKeyLanguage  = "lang"
)

// UserContext copies the identity headers set by the upstream gateway into the
// gin context. Authentication happens before requests reach this service.
func UserContext(t *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyUserRole, c.GetHeader(HeaderUserRole))
		c.Set(ContextKeyCompanyID, c.GetHeader(HeaderCompanyID))

		lang := c.GetHeader("Accept-Language")
		if t != nil {
			lang = t.Normalize(lang)
		}
		c.Set(ContextKeyLanguage, lang)

		if userID != "" {
			c.Request = c.Request.WithContext(logging.ContextWithUserID(c.Request.Context(), userID))
		}
		c.Next()
	}
}

// GetLanguage returns the negotiated language for the request
func GetLanguage(c *gin.Context) string {
	return c.GetString(ContextKeyLanguage)
}
