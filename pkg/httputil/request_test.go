package httputil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"email":"guest@example.com"}`))
		var p payload
		require.NoError(t, DecodeJSON(r, &p))
		assert.Equal(t, "guest@example.com", p.Email)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"email":"a@b.c","bogus":1}`))
		var p payload
		assert.Error(t, DecodeJSON(r, &p))
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{`))
		var p payload
		assert.Error(t, DecodeJSON(r, &p))
	})
}

func TestPathInt64(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/environments/42", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "42"})

	id, err := PathInt64(r, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = PathInt64(r, "missing")
	assert.Error(t, err)

	r = mux.SetURLVars(r, map[string]string{"id": "abc"})
	_, err = PathInt64(r, "id")
	assert.Error(t, err)
}
