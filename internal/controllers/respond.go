package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	logrus "github.com/sirupsen/logrus"

	"pilotos_api/internal/services"
	"pilotos_api/internal/storage"
)

var validatorOnce sync.Once

// useJSONFieldNames makes validation errors report JSON field names.
func useJSONFieldNames() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// bind decodes the request body (JSON, urlencoded or multipart) into obj and
// writes a 422 on failure. Multipart bodies bind their value parts only; file
// parts are picked up by readUploads.
func bind(c *gin.Context, obj any) bool {
	useJSONFieldNames()
	b := binding.Default(c.Request.Method, c.ContentType())
	if b == binding.FormMultipart {
		b = binding.Form
	}
	if err := c.ShouldBindWith(obj, b); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": bindErrors(err)})
		return false
	}
	return true
}

// bindOptional is bind for update bodies, where an empty body means no changes.
func bindOptional(c *gin.Context, obj any) bool {
	if c.Request.ContentLength == 0 && c.ContentType() != binding.MIMEMultipartPOSTForm {
		return true
	}
	return bind(c, obj)
}

func bindErrors(err error) map[string][]string {
	out := map[string][]string{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = append(out[fe.Field()], validationMessage(fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		out[typeErr.Field] = []string{fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String())}
		return out
	}

	switch {
	case errors.Is(err, io.EOF):
		out["body"] = []string{"request body is empty"}
	default:
		out["body"] = []string{"request body is invalid"}
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s may not be greater than %s characters", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}

// respondError maps service errors to the API envelopes. Unexpected errors
// are logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verr.Fields})
		return
	}

	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": svcErr.Message})
			return
		case errors.Is(err, services.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"message": svcErr.Message})
			return
		case errors.Is(err, services.ErrBadRequest):
			c.JSON(http.StatusBadRequest, gin.H{"message": svcErr.Message})
			return
		case errors.Is(err, services.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"detail": svcErr.Message})
			return
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"detail": svcErr.Message})
			return
		}
	}

	logrus.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}

// readUploads fills media slots from multipart file parts named after the
// fields. Non-multipart requests are left alone.
func readUploads(c *gin.Context, fields []string, slot func(string) **storage.Upload) error {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil
	}
	for _, field := range fields {
		fh, err := c.FormFile(field)
		if err != nil {
			continue
		}
		data, err := readFormFile(fh)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			continue
		}
		*slot(field) = &storage.Upload{Data: data, MIME: fh.Header.Get("Content-Type")}
	}
	return nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
