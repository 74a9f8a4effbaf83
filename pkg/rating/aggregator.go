// Package rating ведет агрегаты оценок магазинов: число активных оценок и их сумму.
//
// У каждого пользователя для магазина есть не больше одной активной оценки.
// Повторная оценка заменяет прежнюю, а не добавляется к ней, поэтому count
// всегда равен числу различных пользователей с активной оценкой, а sum/count
// их среднему арифметическому. Среднее не хранится, оно вычисляется при чтении.
package rating

import (
	"sort"
	"sync"
)

// Допустимый диапазон оценки
const (
	MinValue = 1
	MaxValue = 5
)

// Summary - агрегат магазина на момент чтения
type Summary struct {
	StoreID string  `json:"store_id"`
	Count   int     `json:"count"`
	Sum     float64 `json:"sum"`
}

// Mean возвращает sum/count. ok == false означает, что оценок еще нет.
func (s Summary) Mean() (mean float64, ok bool) {
	if s.Count == 0 {
		return 0, false
	}
	return s.Sum / float64(s.Count), true
}

// Update описывает результат изменения: новый агрегат и прежняя активная оценка
type Update struct {
	Summary  Summary
	Previous int  // 0, если прежней оценки не было
	Replaced bool // true при повторной оценке
}

// Record - сохраненная активная оценка, используется для восстановления состояния
type Record struct {
	StoreID string
	UserID  string
	Value   int
}

type key struct {
	storeID string
	userID  string
}

type tally struct {
	count int
	sum   float64
	dist  Distribution
}

// Aggregator - единственный владелец агрегатов. Изменения сериализуются мьютексом.
type Aggregator struct {
	mu     sync.RWMutex
	stores map[string]*tally
	active map[key]int
}

// NewAggregator создает пустой агрегатор
func NewAggregator() *Aggregator {
	return &Aggregator{
		stores: make(map[string]*tally),
		active: make(map[key]int),
	}
}

// ValidateValue проверяет, что оценка - целое от 1 до 5
func ValidateValue(value int) error {
	if value < MinValue || value > MaxValue {
		return &AggregationError{Kind: InvalidRating, Value: value}
	}
	return nil
}

// Submit записывает оценку пользователя и возвращает обновленный агрегат
func (a *Aggregator) Submit(storeID, userID string, value int) (Summary, error) {
	u, err := a.Rate(storeID, userID, value)
	if err != nil {
		return Summary{}, err
	}
	return u.Summary, nil
}

// Rate работает как Submit, но дополнительно сообщает о замененной оценке
func (a *Aggregator) Rate(storeID, userID string, value int) (Update, error) {
	if value < MinValue || value > MaxValue {
		return Update{}, &AggregationError{Kind: InvalidRating, StoreID: storeID, UserID: userID, Value: value}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	t := a.tallyFor(storeID)
	k := key{storeID: storeID, userID: userID}

	old, replaced := a.active[k]
	if replaced {
		t.sum += float64(value - old)
		t.dist[old-1]--
	} else {
		t.count++
		t.sum += float64(value)
	}
	t.dist[value-1]++
	a.active[k] = value

	return Update{Summary: t.summary(storeID), Previous: old, Replaced: replaced}, nil
}

// Retract снимает активную оценку пользователя. ErrNotFound, если ее нет.
func (a *Aggregator) Retract(storeID, userID string) (Summary, error) {
	u, err := a.Remove(storeID, userID)
	if err != nil {
		return Summary{}, err
	}
	return u.Summary, nil
}

// Remove работает как Retract и возвращает снятое значение в Update.Previous
func (a *Aggregator) Remove(storeID, userID string) (Update, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	k := key{storeID: storeID, userID: userID}
	old, ok := a.active[k]
	if !ok {
		return Update{}, &AggregationError{Kind: NotFound, StoreID: storeID, UserID: userID}
	}

	t := a.stores[storeID]
	t.count--
	t.sum -= float64(old)
	t.dist[old-1]--
	if t.count == 0 {
		t.sum = 0
	}
	delete(a.active, k)

	return Update{Summary: t.summary(storeID), Previous: old, Replaced: true}, nil
}

// Summary возвращает текущий агрегат магазина. Для неизвестного магазина count == 0.
func (a *Aggregator) Summary(storeID string) Summary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	t, ok := a.stores[storeID]
	if !ok {
		return Summary{StoreID: storeID}
	}
	return t.summary(storeID)
}

// Active возвращает активную оценку пользователя для магазина
func (a *Aggregator) Active(storeID, userID string) (int, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	v, ok := a.active[key{storeID: storeID, userID: userID}]
	return v, ok
}

// Distribution возвращает число активных оценок по каждому значению
func (a *Aggregator) Distribution(storeID string) Distribution {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if t, ok := a.stores[storeID]; ok {
		return t.dist
	}
	return Distribution{}
}

// Stores возвращает отсортированные id магазинов, для которых были оценки
func (a *Aggregator) Stores() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]string, 0, len(a.stores))
	for id := range a.stores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot возвращает агрегаты всех магазинов, упорядоченные по id
func (a *Aggregator) Snapshot() []Summary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Summary, 0, len(a.stores))
	for id, t := range a.stores {
		out = append(out, t.summary(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StoreID < out[j].StoreID })
	return out
}

// Totals возвращает число магазинов с оценками и общее число активных оценок
func (a *Aggregator) Totals() (stores, ratings int) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, t := range a.stores {
		if t.count > 0 {
			stores++
		}
	}
	return stores, len(a.active)
}

// Restore заменяет состояние агрегатора набором сохраненных оценок.
// Повторы пары (store, user) применяются как замена. Если хотя бы одна
// запись невалидна, состояние не меняется.
func (a *Aggregator) Restore(records []Record) error {
	for _, r := range records {
		if r.Value < MinValue || r.Value > MaxValue {
			return &AggregationError{Kind: InvalidRating, StoreID: r.StoreID, UserID: r.UserID, Value: r.Value}
		}
	}

	fresh := NewAggregator()
	for _, r := range records {
		// значения уже проверены
		_, _ = fresh.Rate(r.StoreID, r.UserID, r.Value)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.stores = fresh.stores
	a.active = fresh.active
	return nil
}

func (a *Aggregator) tallyFor(storeID string) *tally {
	t, ok := a.stores[storeID]
	if !ok {
		t = &tally{}
		a.stores[storeID] = t
	}
	return t
}

func (t *tally) summary(storeID string) Summary {
	return Summary{StoreID: storeID, Count: t.count, Sum: t.sum}
}
