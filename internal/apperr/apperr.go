// Package apperr определяет доменные ошибки сервиса с дискриминированными
// видами. Обработчики HTTP по виду ошибки выбирают код ответа, а контекст
// ошибки хранится в структурированной карте со строковыми ключами.
package apperr

import (
	"errors"
	"fmt"
)

// Kind — вид доменной ошибки.
type Kind string

const (
	// KindValidation — отсутствует или некорректно обязательное поле запроса.
	KindValidation Kind = "validation"
	// KindConflict — у пользователя уже есть активный пробный период.
	KindConflict Kind = "conflict"
	// KindNotFound — пользователь или пробный период не существует.
	KindNotFound Kind = "not_found"
	// KindUnknownFeature — фича отсутствует в каталоге тарифного плана.
	KindUnknownFeature Kind = "unknown_feature"
	// KindUnavailable — хранилище или внешняя зависимость недоступны,
	// вызывающая сторона может повторить запрос с задержкой.
	KindUnavailable Kind = "dependency_unavailable"
)

// Error — доменная ошибка с видом, сообщением и структурированным контекстом.
type Error struct {
	Kind Kind
	Msg  string
	Meta map[string]any // Контекст ошибки, ключи — всегда строки
	Err  error          // Обёрнутая причина, может быть nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создает ошибку заданного вида с сообщением.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap оборачивает причину в доменную ошибку заданного вида.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// WithMeta добавляет поле контекста и возвращает ту же ошибку.
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// Is сообщает, является ли err доменной ошибкой указанного вида.
func Is(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
