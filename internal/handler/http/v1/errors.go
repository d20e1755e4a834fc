package v1

import (
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/livestock_alerts/internal/apperr"
	"github.com/sirupsen/logrus"
)

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Error: code, Message: message})
}

// writeError переводит ошибку сервиса в HTTP ответ. Сбои инфраструктуры
// логируются и уходят в Sentry, текст ошибки клиенту не раскрывается.
func writeError(c *gin.Context, log *logrus.Entry, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	if status >= 500 {
		log.WithError(err).Error("Request failed")
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("route", c.FullPath())
			scope.SetTag("method", c.Request.Method)
			if id, ok := c.Get(requestIDKey); ok {
				scope.SetTag("request_id", id.(string))
			}
			sentry.CaptureException(err)
		})
	} else {
		log.WithError(err).Warn("Request rejected")
	}

	abortWithError(c, status, kind.Code(), apperr.MessageOf(err))
}

// validationMessage делает ответ валидатора читаемым: поле и нарушенное правило
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	msg := fe.Namespace() + " failed on '" + fe.Tag() + "'"
	if fe.Param() != "" {
		msg += " (" + fe.Param() + ")"
	}
	return msg
}
