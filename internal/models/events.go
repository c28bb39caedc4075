package models

import "time"

// TrialExpiredEvent — сообщение, публикуемое в обменник уведомлений
// для каждого пробного периода, переведённого sweep в expired.
// Сам канал доставки уведомлений принадлежит отдельному сервису.
type TrialExpiredEvent struct {
	TrialID   int       `json:"trial_id"`
	UserUID   string    `json:"user_uid"`
	ExpiresAt time.Time `json:"expires_at"`
}
