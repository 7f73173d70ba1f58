package aiclient

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

type ErrorKind int

const (
	// временная ошибка провайдера: таймаут, rate-limit, 5xx - ретраим
	ErrKindTransient ErrorKind = iota
	// постоянная ошибка провайдера: авторизация, некорректный запрос - без ретрая,
	// но засчитывается breaker-у
	ErrKindPersistent
	// ответ провайдера не прошёл разбор/валидацию
	ErrKindValidation
)

// Classify переводит ошибку провайдера в одну из категорий,
// определяющих ретрай и учёт в circuit breaker
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrKindValidation
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrKindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrKindTransient
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return ErrKindTransient
		case apiErr.HTTPStatusCode >= 500:
			return ErrKindTransient
		default:
			return ErrKindPersistent
		}
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"rate limit", "too many requests", "429", "timeout", "deadline", "unavailable", "503", "502", "500", "overloaded", "resource_exhausted"} {
		if strings.Contains(msg, marker) {
			return ErrKindTransient
		}
	}
	return ErrKindPersistent
}
