package rating

import (
	"math"
	"strconv"
)

// NoRatingsText выводится вместо среднего, пока у магазина нет оценок
const NoRatingsText = "No ratings yet"

// RoundToOneDecimal округляет до одного знака. Используется только при выводе.
func RoundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10
}

// FormatMean форматирует среднее для отображения: "1.7" или NoRatingsText
func FormatMean(mean float64, ok bool) string {
	if !ok {
		return NoRatingsText
	}
	return strconv.FormatFloat(RoundToOneDecimal(mean), 'f', 1, 64)
}

// Display возвращает среднее магазина в виде строки для интерфейса
func (s Summary) Display() string {
	return FormatMean(s.Mean())
}

// RoundedMean возвращает округленное среднее для JSON ответа, nil если оценок нет
func (s Summary) RoundedMean() *float64 {
	mean, ok := s.Mean()
	if !ok {
		return nil
	}
	rounded := RoundToOneDecimal(mean)
	return &rounded
}
