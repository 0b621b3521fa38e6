package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Базовые классы ошибок. Сравнивать только через errors.Is.
var (
	// ErrSaltDataNotFound: для workspace ещё не создана соль blind index.
	ErrSaltDataNotFound = errors.New("secret blind index data not found")

	// ErrCryptoIntegrity: аутентифицированная расшифровка не прошла (ключ, шифртекст или tag).
	ErrCryptoIntegrity = errors.New("crypto integrity check failed")

	// ErrWorkspaceSalt: запись соли есть, но нужный ей ключ не сконфигурирован.
	ErrWorkspaceSalt = errors.New("failed to obtain workspace salt needed for secret blind indexing")

	// ErrKeyNotConfigured: запрошенный ключ шифрования не задан.
	ErrKeyNotConfigured = errors.New("encryption key not configured")

	ErrBadRequest     = errors.New("bad request")
	ErrSecretNotFound = errors.New("secret not found")
)

// Конкретные причины BadRequest.
var (
	ErrSecretAlreadyExists = fmt.Errorf("%w: failed to create secret that already exists", ErrBadRequest)
	ErrNoSharedSecret      = fmt.Errorf("%w: failed to create personal secret override for no corresponding shared secret", ErrBadRequest)
	ErrSaltAlreadyExists   = fmt.Errorf("%w: blind index data already exists for workspace", ErrBadRequest)
)

// HTTPStatus подбирает HTTP-статус для ошибки ядра.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrSecretNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
