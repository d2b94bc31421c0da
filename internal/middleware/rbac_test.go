package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/dept-comm-api/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func rbacRouter(claims *models.JWTClaims, roles ...models.UserRole) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	})
	r.GET("/protected", RequireRoles(roles...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireRolesAllows(t *testing.T) {
	r := rbacRouter(&models.JWTClaims{UserID: "u-1", Role: models.RoleFaculty}, models.RoleFaculty, models.RoleHOD)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesRejectsWrongRole(t *testing.T) {
	r := rbacRouter(&models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}, models.RoleFaculty, models.RoleHOD)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	r := rbacRouter(nil, models.RoleFaculty)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
