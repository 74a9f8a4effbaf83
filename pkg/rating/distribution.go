package rating

// Distribution - число активных оценок по значениям, индекс 0 соответствует оценке 1
type Distribution [MaxValue]int

// StarCount - строка гистограммы оценок
type StarCount struct {
	Stars int `json:"stars"`
	Count int `json:"count"`
}

// Count возвращает число оценок со значением stars
func (d Distribution) Count(stars int) int {
	if stars < MinValue || stars > MaxValue {
		return 0
	}
	return d[stars-1]
}

// Total возвращает сумму по всем значениям
func (d Distribution) Total() int {
	total := 0
	for _, c := range d {
		total += c
	}
	return total
}

// Descending возвращает гистограмму от 5 звезд к 1
func (d Distribution) Descending() []StarCount {
	out := make([]StarCount, 0, MaxValue)
	for stars := MaxValue; stars >= MinValue; stars-- {
		out = append(out, StarCount{Stars: stars, Count: d[stars-1]})
	}
	return out
}
