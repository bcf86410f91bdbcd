package validate

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeJSON(t *testing.T) {
	type body struct {
		EventID int64 `json:"event_id"`
	}

	t.Run("ok", func(t *testing.T) {
		var b body
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"event_id":5}`))
		assert.NoError(t, DecodeJSON(req, &b))
		assert.Equal(t, int64(5), b.EventID)
	})

	t.Run("unknown_field", func(t *testing.T) {
		var b body
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"event_id":5,"x":1}`))
		assert.Error(t, DecodeJSON(req, &b))
	})

	t.Run("trailing_data", func(t *testing.T) {
		var b body
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"event_id":5}{}`))
		assert.Error(t, DecodeJSON(req, &b))
	})
}

func TestParams(t *testing.T) {
	n, ok := IntParam("", 7)
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	n, ok = IntParam(" 3 ", 7)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = IntParam("three", 7)
	assert.False(t, ok)

	f, ok := FloatParam("55.75")
	assert.True(t, ok)
	assert.Equal(t, 55.75, f)

	for _, bad := range []string{"", "NaN", "nan", "Inf", "-Infinity", "1e400"} {
		_, ok = FloatParam(bad)
		assert.False(t, ok, bad)
	}

	ids, ok := IDList("3, 1,,2")
	assert.True(t, ok)
	assert.Equal(t, []int64{3, 1, 2}, ids)

	_, ok = IDList("1,-2")
	assert.False(t, ok)

	_, ok = IDList(" , ")
	assert.False(t, ok)
}
