package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quill/internal/authz"
	"quill/internal/errs"
	"quill/internal/middleware"
	"quill/internal/services"
	"quill/internal/utils"
)

// base carries what every handler needs to answer a request.
type base struct {
	production bool
}

// principal is the caller, or nil for anonymous requests.
func principal(c *gin.Context) *authz.Principal {
	return middleware.Principal(c)
}

func ok(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func okMessage(c *gin.Context, code int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

func okList[T any](c *gin.Context, items []T) {
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

func okPage[T any](c *gin.Context, p *services.Page[T]) {
	pagination := gin.H{}
	if p.HasNext {
		pagination["next"] = gin.H{"page": p.Page + 1, "limit": p.Limit}
	}
	if p.HasPrev {
		pagination["prev"] = gin.H{"page": p.Page - 1, "limit": p.Limit}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(p.Items),
		"total":      p.Total,
		"pagination": pagination,
		"data":       p.Items,
	})
}

// fail writes the error envelope. Production responses never carry causes.
func (b base) fail(c *gin.Context, err error) {
	e := errs.As(err)
	if e.Kind == errs.KindServer {
		_ = c.Error(err)
	}

	message := e.Message
	if b.production && e.Kind == errs.KindServer {
		message = "Server Error"
	}
	detail := gin.H{"type": e.Kind}
	if e.Field != "" {
		detail["field"] = e.Field
	}
	body := gin.H{"success": false, "message": message, "error": detail}
	if !b.production {
		body["details"] = e.Error()
		body["path"] = c.Request.URL.Path
		body["method"] = c.Request.Method
		body["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	}
	c.AbortWithStatusJSON(e.Status(), body)
}

// pathID parses a numeric path parameter, answering 400 when malformed.
func (b base) pathID(c *gin.Context, name string) (uint, bool) {
	id, valid := utils.ParseID(c.Param(name))
	if !valid {
		b.fail(c, errs.Validation(name, "Invalid ID format"))
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body, answering 400 when malformed.
func (b base) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		b.fail(c, errs.Validation("body", "Invalid request body: %v", err))
		return false
	}
	return true
}

func pageParams(c *gin.Context) (int, int) {
	return utils.StringToInt(c.Query("page")), utils.StringToInt(c.Query("limit"))
}
