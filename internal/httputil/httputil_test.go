package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fastener/internal/calc/calcerr"
)

func TestWriteError(t *testing.T) {
	t.Run("input error includes message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, calcerr.New(calcerr.CodeUnknownMaterial, `unknown material "X"`))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var body ErrorBody
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, calcerr.CodeUnknownMaterial, body.Code)
		assert.Equal(t, `unknown material "X"`, body.Message)
	})

	t.Run("internal error omits message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("db down"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db down")
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, calcerr.New(calcerr.CodeNotFound, "no record"))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1,"b":2}`))
	assert.Error(t, DecodeJSON(r, &v))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, 1, v.A)
}
