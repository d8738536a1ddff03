package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0 ₽", FormatPrice(0))
	assert.Equal(t, "800 ₽", FormatPrice(800))
	assert.Equal(t, "4 500 ₽", FormatPrice(4500))
	assert.Equal(t, "1 234 567 ₽", FormatPrice(1234567))
	assert.Equal(t, "-1 500 ₽", FormatPrice(-1500))
}

func TestParsers(t *testing.T) {
	assert.Equal(t, 5, ParseInt(" 5 ", 0))
	assert.Equal(t, 7, ParseInt("x", 7))
	assert.Equal(t, uint(3), ParseUint("3", 0))
	assert.Equal(t, uint(9), ParseUint("-3", 9))
}

func TestTruncateAndEscape(t *testing.T) {
	assert.Equal(t, "Чехол", Truncate("Чехол", 10))
	assert.Equal(t, "Чех…", Truncate("Чехол", 4))
	assert.Equal(t, "&lt;b&gt;", Escape("<b>"))
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2024, 5, 6, 13, 14, 15, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
	assert.Equal(t, "06.05.2024 13:14", FormatDate(ts))
}
