package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWeekday(t *testing.T) {
	tests := map[string]string{
		"LUNES":     Monday,
		"lunes":     Monday,
		"miércoles": Wednesday,
		"MIÉRCOLES": Wednesday,
		" Sábado ":  Saturday,
		"domingo":   Sunday,
	}
	for in, want := range tests {
		got, ok := NormalizeWeekday(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "monday", "lun", "FERIADO"} {
		_, ok := NormalizeWeekday(bad)
		assert.False(t, ok, bad)
	}
}

func TestWeekdayOf(t *testing.T) {
	d := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, Monday, WeekdayOf(d))
	assert.Equal(t, Wednesday, WeekdayOf(d.AddDate(0, 0, 2)))
	assert.Equal(t, Sunday, WeekdayOf(d.AddDate(0, 0, 6)))
}

func TestIndex(t *testing.T) {
	assert.Equal(t, 0, Index(Monday))
	assert.Equal(t, 6, Index(Sunday))
	assert.Equal(t, 7, Index("X"))
}
