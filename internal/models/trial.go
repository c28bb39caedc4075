// Package models содержит доменные структуры пробного периода, пользователя
// и результатов проверки квот, используемые в бизнес-логике и хранилище.
package models

import "time"

// Статусы пробного периода. Автоматическое истечение срабатывает
// только из статуса active; expired и converted — терминальные.
const (
	TrialStatusPending   = "pending"
	TrialStatusActive    = "active"
	TrialStatusExpired   = "expired"
	TrialStatusConverted = "converted"
)

// TrialDuration — фиксированная длительность пробного периода.
const TrialDuration = 14 * 24 * time.Hour

// Trial представляет пробный период пользователя — ограниченный по времени
// бесплатный доступ к сервису. На одного пользователя одновременно может
// существовать не более одной записи со статусом active.
type Trial struct {
	ID          int        `json:"id"`
	UserUID     string     `json:"user_uid"`               // Уникальный идентификатор пользователя
	Status      string     `json:"status"`                 // pending, active, expired или converted
	StartedAt   time.Time  `json:"started_at"`             // Дата начала, всегда раньше ExpiresAt
	ExpiresAt   time.Time  `json:"expires_at"`             // Дата окончания
	ConvertedAt *time.Time `json:"converted_at,omitempty"` // Заполняется только при переходе в converted
}

// IsExpired сообщает, истёк ли пробный период к моменту now, не меняя статус.
// Статус в хранилище обновляется только периодическим sweep, поэтому чтение
// может вернуть логически истёкшую, но ещё не обработанную запись active —
// это документированное окно устаревания, а вызывающий код может применить
// этот предикат сам.
func (t *Trial) IsExpired(now time.Time) bool {
	return t.Status == TrialStatusActive && !now.Before(t.ExpiresAt)
}
