// Package jitter добавляет случайный разброс к интервалам повторов, чтобы воркеры
// разных экземпляров не обращались к брокеру одновременно.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultFactor — разброс по умолчанию, 50% от интервала.
const DefaultFactor = 0.5

// Duration возвращает случайное значение из [d, d*(1+factor)].
func Duration(d time.Duration, factor float64) time.Duration {
	return spread(d, factor, rand.Float64)
}

func spread(d time.Duration, factor float64, random func() float64) time.Duration {
	if d <= 0 || factor <= 0 {
		return d
	}
	return d + time.Duration(random()*factor*float64(d))
}

// Backoff — экспоненциальная задержка с потолком.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64
}

// Delay возвращает задержку перед попыткой attempt (с нуля) без разброса.
func (b Backoff) Delay(attempt int) time.Duration {
	d := b.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= b.Max {
			return b.Max
		}
	}
	if d > b.Max {
		return b.Max
	}
	return d
}

// Next возвращает задержку перед попыткой attempt с разбросом.
func (b Backoff) Next(attempt int) time.Duration {
	return Duration(b.Delay(attempt), b.Factor)
}
