package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации
	ErrPlayerNameRequired = errors.New("player name is required")
	ErrPlayerNameTooLong  = errors.New("player name is too long")
	ErrInvalidMatch       = errors.New("match must reference two different players")

	// Ошибки ссылок на игроков
	ErrPlayerNotFound   = errors.New("player not found")
	ErrUnknownPlayer    = errors.New("match references a player that is not registered")
	ErrInvalidReference = errors.New("stored match references a player that does not exist")

	// Ошибки конфликтов
	ErrPlayersHaveMatches = errors.New("players cannot be deleted while matches are recorded")

	// Ошибки аутентификации
	ErrInvalidCredentials = errors.New("invalid password")

	// Выгрузка
	ErrExportDisabled = errors.New("standings export is not configured")
)
