package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"lms-backend/internal/auth"
	"lms-backend/internal/middleware"
	appErrors "lms-backend/pkg/errors"
	"lms-backend/pkg/utils"
)

// bindJSON decodes the request body into req. An empty body is not an error so
// that missing fields are reported by validation with the usual message.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, appErrors.Validation("Invalid request body"))
		return false
	}
	return true
}

// bind decodes a JSON or multipart form body depending on the content type.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, http.ErrNotMultipart) {
		utils.RespondError(c, appErrors.Validation("Invalid request body"))
		return false
	}
	return true
}

// formFile opens the uploaded file under field. It returns a nil file when the
// request carries none.
func formFile(c *gin.Context, field string) (multipart.File, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, true
		}
		utils.RespondError(c, appErrors.Validation("File not uploaded, please try again"))
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		utils.RespondError(c, appErrors.Validation("File not uploaded, please try again"))
		return nil, false
	}
	return file, true
}

func mustClaims(c *gin.Context) (*auth.Claims, bool) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		utils.RespondError(c, appErrors.Unauthenticated(appErrors.ErrUnauthenticated))
		return nil, false
	}
	return claims, true
}
