package request

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestID(t *testing.T) {
	req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "6F9619FF-8B86-D011-B42D-00CF4FC964FF")
	id, ok := ID(req, "id")
	require.True(t, ok)
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00cf4fc964ff", id)

	_, ok = ID(withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "42"), "id")
	assert.False(t, ok)
}

func TestDecodeOptional(t *testing.T) {
	var body struct {
		Email string `json:"email"`
	}
	require.NoError(t, DecodeOptional(httptest.NewRequest(http.MethodPost, "/", nil), &body))
	require.NoError(t, DecodeOptional(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("")), &body))
	require.NoError(t, DecodeOptional(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"email":"x@y.z"}`)), &body))
	assert.Equal(t, "x@y.z", body.Email)
	assert.Error(t, DecodeOptional(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{")), &body))
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&per_page=abc", nil)
	assert.Equal(t, 3, QueryInt(req, "page", 1))
	assert.Equal(t, 20, QueryInt(req, "per_page", 20))
	assert.Equal(t, 7, QueryInt(req, "missing", 7))
}
