package service

import "errors"

var (
	// ErrInvalidHandle: el handle o la URL de perfil no se pudo interpretar.
	ErrInvalidHandle = errors.New("invalid account handle")
	// ErrAccountNotFound: la cuenta no existe o esta suspendida; no se puede armar persona.
	ErrAccountNotFound = errors.New("account not found")
	// ErrSourceUnavailable: no se pudieron leer ni los metadatos de la cuenta.
	ErrSourceUnavailable = errors.New("account source unavailable")
	// ErrServiceFailure: la llamada al LLM fallo.
	ErrServiceFailure = errors.New("llm service failure")
	// ErrMalformedResponse: el LLM respondio algo que no es el objeto JSON esperado.
	ErrMalformedResponse = errors.New("malformed llm response")
)

// ErrTopicsDisabled: el etiquetado de temas esta apagado por configuracion.
var ErrTopicsDisabled = errors.New("topic labeling disabled")
