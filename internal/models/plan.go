// Package models содержит тарифные планы премиум-подписки.
package models

import (
	"fmt"
	"time"
)

// Plan описывает тарифный план премиум-подписки.
// Duration определяет срок действия подписки с момента оплаты.
type Plan struct {
	Name     string        `json:"name"`     // Название плана
	Price    int           `json:"price"`    // Цена в минимальных единицах валюты (центах)
	Duration time.Duration `json:"duration"` // Срок действия подписки
}

// Plans — доступные тарифные планы. Минутный план используется
// для демонстрации истечения подписки без долгого ожидания.
var Plans = []Plan{
	{Name: "minute", Price: 100, Duration: time.Minute},
	{Name: "5days", Price: 500, Duration: 5 * 24 * time.Hour},
	{Name: "10days", Price: 900, Duration: 10 * 24 * time.Hour},
}

// FindPlan возвращает тарифный план по названию.
func FindPlan(name string) (Plan, error) {
	for _, p := range Plans {
		if p.Name == name {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("unknown subscription plan: %s", name)
}
