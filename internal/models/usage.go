package models

// UsageCheckResult — результат проверки квоты, нигде не сохраняется.
// Remaining всегда неотрицателен: max(0, Limit - CurrentUsage).
// Allowed истинно тогда и только тогда, когда Remaining >= запрошенного количества.
type UsageCheckResult struct {
	Allowed      bool   `json:"allowed"`
	Remaining    int64  `json:"remaining"`
	Limit        int64  `json:"limit"`
	CurrentUsage int64  `json:"current_usage"`
	Feature      string `json:"feature"`
	CustomerID   string `json:"customer_id"`
}

// DummyUsageCheck используется для приёма запроса проверки квоты из JSON.
// Quantity по умолчанию равен 1 и проставляется в сервисе, если не передан.
type DummyUsageCheck struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Feature    string `json:"feature" validate:"required"`
	Quantity   int64  `json:"quantity" validate:"omitempty,gt=0"`
}

// DummyUsageRecord используется для приёма события учёта использования из JSON.
type DummyUsageRecord struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Feature    string `json:"feature" validate:"required"`
	Quantity   int64  `json:"quantity" validate:"omitempty,gt=0"`
}
