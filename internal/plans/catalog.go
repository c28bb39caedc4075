// Package plans содержит каталог тарифных планов: отображение ключа плана
// в набор фич с месячными лимитами. Каталог загружается один раз при старте
// процесса и после загрузки не изменяется, поэтому его можно безопасно
// разделять между компонентами без синхронизации. Версионируется деплоем.
package plans

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/supportiq/entitlement-service/internal/apperr"
)

// Ключи встроенных тарифных планов.
const (
	PlanFree   = "free"
	PlanGrowth = "growth"
	PlanScale  = "scale"
)

// Feature — запись каталога для одной фичи плана.
type Feature struct {
	Limit int64 `yaml:"limit"` // Максимум использований за расчётный период
}

// Plan — запись каталога для одного тарифного плана.
type Plan struct {
	Key      string             `yaml:"key"`
	Features map[string]Feature `yaml:"features"`
}

// Catalog — неизменяемый после загрузки каталог планов.
type Catalog struct {
	plans map[string]Plan
}

// catalogFile описывает yaml-файл каталога для переопределения встроенных лимитов.
type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

// New строит каталог из списка планов. Используется встроенным каталогом
// и тестами; после построения каталог не изменяется.
func New(list []Plan) *Catalog {
	m := make(map[string]Plan, len(list))
	for _, p := range list {
		m[p.Key] = p
	}
	return &Catalog{plans: m}
}

// Default возвращает встроенный каталог, используемый без файла переопределения.
func Default() *Catalog {
	return New([]Plan{
		{Key: PlanFree, Features: map[string]Feature{
			"tickets_analyzed": {Limit: 100},
			"ai_insights":      {Limit: 10},
			"csv_exports":      {Limit: 2},
		}},
		{Key: PlanGrowth, Features: map[string]Feature{
			"tickets_analyzed": {Limit: 1000},
			"ai_insights":      {Limit: 200},
			"csv_exports":      {Limit: 20},
		}},
		{Key: PlanScale, Features: map[string]Feature{
			"tickets_analyzed": {Limit: 10000},
			"ai_insights":      {Limit: 2000},
			"csv_exports":      {Limit: 200},
		}},
	})
}

// Load читает каталог из yaml-файла. Пустой путь означает встроенный каталог.
func Load(path string) (*Catalog, error) {
	const op = "plans.Load"
	if path == "" {
		return Default(), nil
	}
	var file catalogFile
	if err := cleanenv.ReadConfig(path, &file); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("%s: catalog file %s has no plans", op, path)
	}
	return New(file.Plans), nil
}

// Limit возвращает лимит фичи для плана. Неизвестный план — ошибка not_found,
// фича вне каталога плана — ошибка unknown_feature: отсутствие записи в
// каталоге никогда не трактуется как безлимит.
func (c *Catalog) Limit(planKey, feature string) (int64, error) {
	plan, ok := c.plans[planKey]
	if !ok {
		return 0, apperr.New(apperr.KindNotFound, "unknown plan").
			WithMeta("plan", planKey)
	}
	f, ok := plan.Features[feature]
	if !ok {
		return 0, apperr.New(apperr.KindUnknownFeature, "feature is not in the plan catalog").
			WithMeta("plan", planKey).
			WithMeta("feature", feature)
	}
	return f.Limit, nil
}

// Has сообщает, определён ли план в каталоге.
func (c *Catalog) Has(planKey string) bool {
	_, ok := c.plans[planKey]
	return ok
}
