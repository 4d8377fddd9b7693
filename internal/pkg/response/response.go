package response

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
)

// Message is a bilingual user-facing message. Handlers always return both
// variants; the client picks one by its active language.
type Message struct {
	EN string `json:"en"`
	AR string `json:"ar"`
}

// Msg builds a bilingual message pair.
func Msg(en, ar string) Message { return Message{EN: en, AR: ar} }

var (
	msgNotFound         = Msg("Not found", "غير موجود")
	msgUnauthorized     = Msg("Please sign in first", "الرجاء تسجيل الدخول أولاً")
	msgForbidden        = Msg("You are not allowed to do that", "غير مسموح لك بهذا الإجراء")
	msgMethodNotAllowed = Msg("Method not allowed", "الطريقة غير مسموح بها")
	msgInternal         = Msg("Something went wrong, please try again", "حدث خطأ ما، حاول مرة أخرى")
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	TotalPage   int   `json:"total_page"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"has_next_page"`
}

type pagedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// OK sends a 200 response. Arrays/slices are wrapped in {data: [...]}.
func OK(c *gin.Context, data interface{}) {
	if data != nil {
		v := reflect.ValueOf(data)
		if v.Kind() == reflect.Slice {
			c.JSON(http.StatusOK, gin.H{"data": data})
			return
		}
	}
	c.JSON(http.StatusOK, data)
}

// Paged sends a paginated response.
func Paged(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, pagedResponse{Data: data, Pagination: pagination})
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func abortWith(c *gin.Context, code int, msg Message) {
	c.AbortWithStatusJSON(code, gin.H{"ok": 0, "code": code, "message": msg})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, msg Message) {
	abortWith(c, http.StatusBadRequest, msg)
}

// BadRequestText sends a 400 with an untranslated (validator) message.
func BadRequestText(c *gin.Context, text string) {
	abortWith(c, http.StatusBadRequest, Message{EN: text, AR: text})
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	abortWith(c, http.StatusUnauthorized, msgUnauthorized)
}

// Forbidden sends a 403 error response.
func Forbidden(c *gin.Context) {
	abortWith(c, http.StatusForbidden, msgForbidden)
}

// ForbiddenMsg sends a 403 error response with a custom message.
func ForbiddenMsg(c *gin.Context, msg Message) {
	abortWith(c, http.StatusForbidden, msg)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context) {
	abortWith(c, http.StatusNotFound, msgNotFound)
}

// NotFoundMsg sends a 404 error with a custom message.
func NotFoundMsg(c *gin.Context, msg Message) {
	abortWith(c, http.StatusNotFound, msg)
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, msg Message) {
	abortWith(c, http.StatusConflict, msg)
}

// UnprocessableEntity sends a 422 error response.
func UnprocessableEntity(c *gin.Context, msg Message) {
	abortWith(c, http.StatusUnprocessableEntity, msg)
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	abortWith(c, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

// InternalError sends a 500 error response. The raw error is logged by the
// request middleware, not leaked to the client.
func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	abortWith(c, http.StatusInternalServerError, msgInternal)
}
