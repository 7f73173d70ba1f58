package authutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"hr-interview-backend/config"
)

// GetInterviewToken выдаёт кандидату токен доступа к конкретному интервью
func GetInterviewToken(interviewID string) (tokenString string, err error) {
	ttl := time.Duration(config.Conf.Auth.InterviewTokenTTLHours) * time.Hour
	claims := jwt.MapClaims{
		"interview_id": interviewID,
		"exp":          time.Now().Add(ttl).Unix(),
		"iat":          time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Conf.Auth.InterviewTokenSecret))
}

// ValidateInterviewToken возвращает идентификатор интервью из токена кандидата
func ValidateInterviewToken(tokenString string) (interviewID string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(config.Conf.Auth.InterviewTokenSecret), nil
	})
	if err != nil {
		return "", errors.Wrap(err, "ошибка проверки токена")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("токен недействителен")
	}
	interviewID, ok = claims["interview_id"].(string)
	if !ok || interviewID == "" {
		return "", errors.New("токен недействителен")
	}
	return interviewID, nil
}

func GetClaims(ctx *fiber.Ctx) jwt.MapClaims {
	token, ok := ctx.Locals("user").(*jwt.Token)
	if !ok {
		return jwt.MapClaims{}
	}
	return token.Claims.(jwt.MapClaims)
}
