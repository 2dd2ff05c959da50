package bot

import (
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/ports/errcode"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/transport/httptransport"
)

func translateBotError(code errcode.Code) string {
	switch code {
	case errcode.NotFound:
		return "Не найдено"
	case errcode.BadRequest:
		return "Некорректный запрос"
	case errcode.Unavailable:
		return "Данные рынка временно недоступны, попробуйте позже"
	default:
		return "Внутренняя ошибка сервиса, попробуйте позже"
	}
}

func errorText(err error) string {
	return translateBotError(httptransport.FromServiceError(err))
}
