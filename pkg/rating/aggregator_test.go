package rating

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertSummary(t *testing.T, s Summary, count int, mean float64) {
	t.Helper()
	assert.Equal(t, count, s.Count)
	m, ok := s.Mean()
	require.True(t, ok)
	assert.InDelta(t, mean, m, 1e-9)
}

func TestAggregator_EmptyStoreHasNoMean(t *testing.T) {
	a := NewAggregator()

	s := a.Summary("S")

	assert.Equal(t, "S", s.StoreID)
	assert.Equal(t, 0, s.Count)
	_, ok := s.Mean()
	assert.False(t, ok)
	assert.Equal(t, NoRatingsText, s.Display())
	assert.Nil(t, s.RoundedMean())
}

func TestAggregator_ReplacementAndRetract(t *testing.T) {
	a := NewAggregator()

	s, err := a.Submit("S", "A", 3)
	require.NoError(t, err)
	assertSummary(t, s, 1, 3.0)

	s, err = a.Submit("S", "B", 5)
	require.NoError(t, err)
	assertSummary(t, s, 2, 4.0)

	// повторная оценка A заменяет прежнюю
	s, err = a.Submit("S", "A", 1)
	require.NoError(t, err)
	assertSummary(t, s, 2, 3.0)

	s, err = a.Retract("S", "B")
	require.NoError(t, err)
	assertSummary(t, s, 1, 1.0)

	// повторный retract B: NotFound, состояние не меняется
	_, err = a.Retract("S", "B")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var aggErr *AggregationError
	require.True(t, errors.As(err, &aggErr))
	assert.Equal(t, NotFound, aggErr.Kind)
	assert.Equal(t, "S", aggErr.StoreID)
	assert.Equal(t, "B", aggErr.UserID)

	assertSummary(t, a.Summary("S"), 1, 1.0)
}

func TestAggregator_SubmitSameValueTwiceIsIdempotent(t *testing.T) {
	a := NewAggregator()

	first, err := a.Submit("S", "U", 4)
	require.NoError(t, err)
	second, err := a.Submit("S", "U", 4)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, second.Count)
	assert.Equal(t, 4.0, second.Sum)
}

func TestAggregator_RangeRejection(t *testing.T) {
	a := NewAggregator()
	_, err := a.Submit("S", "X", 2)
	require.NoError(t, err)
	before := a.Summary("S")

	for _, v := range []int{0, 6, -1, 100} {
		t.Run(fmt.Sprintf("value %d", v), func(t *testing.T) {
			s, err := a.Submit("S", "U", v)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRating))
			assert.Equal(t, Summary{}, s)
			assert.Equal(t, before, a.Summary("S"))
			_, active := a.Active("S", "U")
			assert.False(t, active)
		})
	}
}

func TestAggregator_RejectedReRateKeepsPreviousValue(t *testing.T) {
	a := NewAggregator()
	_, err := a.Submit("S", "U", 3)
	require.NoError(t, err)

	_, err = a.Submit("S", "U", 6)

	require.Error(t, err)
	v, ok := a.Active("S", "U")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assertSummary(t, a.Summary("S"), 1, 3.0)
}

func TestAggregator_MeanIsNotStoredRounded(t *testing.T) {
	a := NewAggregator()
	for i, v := range []int{1, 2, 2} {
		_, err := a.Submit("S", fmt.Sprintf("u%d", i), v)
		require.NoError(t, err)
	}

	s := a.Summary("S")
	mean, ok := s.Mean()

	require.True(t, ok)
	assert.Equal(t, 5.0/3.0, mean)
	assert.Equal(t, "1.7", s.Display())
	require.NotNil(t, s.RoundedMean())
	assert.Equal(t, 1.7, *s.RoundedMean())
}

func TestAggregator_RetractLastRatingClearsMean(t *testing.T) {
	a := NewAggregator()
	_, err := a.Submit("S", "U", 5)
	require.NoError(t, err)

	s, err := a.Retract("S", "U")

	require.NoError(t, err)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 0.0, s.Sum)
	_, ok := s.Mean()
	assert.False(t, ok)
}

func TestAggregator_RetractUnknownStore(t *testing.T) {
	a := NewAggregator()

	_, err := a.Retract("missing", "U")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, a.Stores())
}

func TestAggregator_RateReportsPrevious(t *testing.T) {
	a := NewAggregator()

	u, err := a.Rate("S", "U", 2)
	require.NoError(t, err)
	assert.False(t, u.Replaced)
	assert.Equal(t, 0, u.Previous)

	u, err = a.Rate("S", "U", 5)
	require.NoError(t, err)
	assert.True(t, u.Replaced)
	assert.Equal(t, 2, u.Previous)

	u, err = a.Remove("S", "U")
	require.NoError(t, err)
	assert.Equal(t, 5, u.Previous)
}

func TestAggregator_StoresAreIndependent(t *testing.T) {
	a := NewAggregator()
	_, _ = a.Submit("S1", "U", 5)
	_, _ = a.Submit("S2", "U", 1)

	assertSummary(t, a.Summary("S1"), 1, 5.0)
	assertSummary(t, a.Summary("S2"), 1, 1.0)
	assert.Equal(t, []string{"S1", "S2"}, a.Stores())

	stores, ratings := a.Totals()
	assert.Equal(t, 2, stores)
	assert.Equal(t, 2, ratings)
}

func TestAggregator_Distribution(t *testing.T) {
	a := NewAggregator()
	_, _ = a.Submit("S", "A", 5)
	_, _ = a.Submit("S", "B", 5)
	_, _ = a.Submit("S", "C", 3)
	_, _ = a.Submit("S", "B", 4)

	d := a.Distribution("S")

	assert.Equal(t, 1, d.Count(5))
	assert.Equal(t, 1, d.Count(4))
	assert.Equal(t, 1, d.Count(3))
	assert.Equal(t, 0, d.Count(1))
	assert.Equal(t, 0, d.Count(9))
	assert.Equal(t, 3, d.Total())
	assert.Equal(t, []StarCount{
		{Stars: 5, Count: 1},
		{Stars: 4, Count: 1},
		{Stars: 3, Count: 1},
		{Stars: 2, Count: 0},
		{Stars: 1, Count: 0},
	}, d.Descending())
}

func TestAggregator_Snapshot(t *testing.T) {
	a := NewAggregator()
	_, _ = a.Submit("b", "U", 2)
	_, _ = a.Submit("a", "U", 4)

	assert.Equal(t, []Summary{
		{StoreID: "a", Count: 1, Sum: 4},
		{StoreID: "b", Count: 1, Sum: 2},
	}, a.Snapshot())
}

func TestAggregator_Restore(t *testing.T) {
	a := NewAggregator()
	_, _ = a.Submit("old", "U", 1)

	err := a.Restore([]Record{
		{StoreID: "S", UserID: "A", Value: 3},
		{StoreID: "S", UserID: "B", Value: 5},
		{StoreID: "S", UserID: "A", Value: 1},
	})

	require.NoError(t, err)
	assertSummary(t, a.Summary("S"), 2, 3.0)
	assert.Equal(t, 0, a.Summary("old").Count)
}

func TestAggregator_RestoreInvalidRecordLeavesStateUnchanged(t *testing.T) {
	a := NewAggregator()
	_, _ = a.Submit("S", "U", 4)

	err := a.Restore([]Record{
		{StoreID: "S", UserID: "A", Value: 3},
		{StoreID: "S", UserID: "B", Value: 0},
	})

	assert.ErrorIs(t, err, ErrInvalidRating)
	assertSummary(t, a.Summary("S"), 1, 4.0)
	_, ok := a.Active("S", "A")
	assert.False(t, ok)
}

func TestAggregator_ConcurrentSubmissions(t *testing.T) {
	a := NewAggregator()
	const users = 200

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", i)
			_, _ = a.Submit("S", user, 1)
			_, _ = a.Submit("S", user, 5)
			_ = a.Summary("S")
		}(i)
	}
	wg.Wait()

	s := a.Summary("S")
	assert.Equal(t, users, s.Count)
	assert.Equal(t, float64(users*5), s.Sum)
	assert.Equal(t, users, a.Distribution("S").Count(5))
}

func TestValidateValue(t *testing.T) {
	for v := MinValue; v <= MaxValue; v++ {
		assert.NoError(t, ValidateValue(v))
	}
	assert.ErrorIs(t, ValidateValue(0), ErrInvalidRating)
	assert.ErrorIs(t, ValidateValue(6), ErrInvalidRating)
}
