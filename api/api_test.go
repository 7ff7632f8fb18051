package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/TFMV/datagen/api"
	"github.com/TFMV/datagen/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newServer(t *testing.T) *api.Server {
	t.Helper()
	s := api.NewServer(api.ServerOptions{
		Port:       "3000",
		MaxRows:    500,
		MaxWorkers: 2,
		Logger:     zap.NewNop(),
	})
	require.NotNil(t, s)
	return s
}

func postJSON(t *testing.T, s *api.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.GetApp().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// TestHealthEndpoint checks if the /health endpoint returns "OK"
func TestHealthEndpoint(t *testing.T) {
	s := newServer(t)
	resp, err := s.GetApp().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "OK", string(body))
}

// versionResponse is used for JSON unmarshalling in the /version endpoint test
type versionResponse struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Build     string `json:"build"`
	GoVersion string `json:"go_version"`
	Time      string `json:"time"`
}

func TestVersionEndpoint(t *testing.T) {
	s := newServer(t)
	resp, err := s.GetApp().Test(httptest.NewRequest(http.MethodGet, "/version", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var v versionResponse
	decode(t, resp, &v)
	assert.Equal(t, "datagen API", v.Service)
	assert.NotEmpty(t, v.Version)
	assert.NotEmpty(t, v.Build)
	assert.NotEmpty(t, v.GoVersion)
	assert.NotEmpty(t, v.Time)
}

func TestModelsEndpoint(t *testing.T) {
	s := newServer(t)

	resp, err := s.GetApp().Test(httptest.NewRequest(http.MethodGet, "/models", nil))
	require.NoError(t, err)
	var all []model.ModelSpec
	decode(t, resp, &all)
	assert.Len(t, all, len(model.SampleModels()))

	resp, err = s.GetApp().Test(httptest.NewRequest(http.MethodGet, "/models?search=COMMERCE", nil))
	require.NoError(t, err)
	var found []model.ModelSpec
	decode(t, resp, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "Product Data", found[0].Name)
}

func TestGetModelEndpoint(t *testing.T) {
	s := newServer(t)

	resp, err := s.GetApp().Test(httptest.NewRequest(http.MethodGet, "/models/"+url.PathEscape("customer data"), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var m model.ModelSpec
	decode(t, resp, &m)
	assert.Equal(t, "Customer Data", m.Name)

	resp, err = s.GetApp().Test(httptest.NewRequest(http.MethodGet, "/models/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type generateResponse struct {
	Model   string `json:"model"`
	Rows    int    `json:"rows"`
	Batches int    `json:"batches"`
	Columns []struct {
		Name   string `json:"name"`
		Type   string `json:"type"`
		Values []any  `json:"values"`
	} `json:"columns"`
}

func TestGenerateEndpoint(t *testing.T) {
	s := newServer(t)
	resp := postJSON(t, s, "/generate", map[string]any{
		"model":      "Customer Data",
		"rows":       10,
		"batch_size": 4,
		"seed":       7,
		"types":      map[string]string{"age": "unsupported"},
		"fields":     []string{"customer_id", "age"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out generateResponse
	decode(t, resp, &out)
	assert.Equal(t, 10, out.Rows)
	assert.Equal(t, 3, out.Batches)
	require.Len(t, out.Columns, 2)
	assert.Equal(t, "customer_id", out.Columns[0].Name)
	assert.Equal(t, "unsupported", out.Columns[1].Type)
	for _, v := range out.Columns[1].Values {
		assert.Equal(t, "", v)
	}
}

func TestGenerateEndpointDeterministic(t *testing.T) {
	s := newServer(t)
	body := map[string]any{"model": "Web Sessions", "rows": 20, "seed": 3}

	var first, second generateResponse
	decode(t, postJSON(t, s, "/generate", body), &first)
	decode(t, postJSON(t, s, "/generate", body), &second)
	assert.Equal(t, first.Columns, second.Columns)
}

func TestGenerateEndpointInlineSchema(t *testing.T) {
	s := newServer(t)
	resp := postJSON(t, s, "/generate", map[string]any{
		"rows": 5,
		"schema": map[string]any{
			"name": "ids",
			"fields": []map[string]any{
				{"name": "id", "type": "uuid"},
				{"name": "age", "type": "integer", "options": map[string]any{"min": 18, "max": 65}},
			},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out generateResponse
	decode(t, resp, &out)
	assert.Equal(t, "ids", out.Model)
	assert.Equal(t, 5, out.Rows)
}

func TestGenerateEndpointErrors(t *testing.T) {
	s := newServer(t)

	cases := []struct {
		name string
		body map[string]any
		code int
	}{
		{"too many rows", map[string]any{"model": "Customer Data", "rows": 501}, http.StatusBadRequest},
		{"unknown model", map[string]any{"model": "Nope", "rows": 1}, http.StatusNotFound},
		{"no model", map[string]any{"rows": 1}, http.StatusBadRequest},
		{"negative rows", map[string]any{"model": "Customer Data", "rows": -1}, http.StatusBadRequest},
		{"type not allowed", map[string]any{"model": "Customer Data", "rows": 1, "types": map[string]string{"age": "email"}}, http.StatusBadRequest},
		{"inverted bounds", map[string]any{"rows": 1, "schema": map[string]any{
			"name":   "bad",
			"fields": []map[string]any{{"name": "x", "type": "integer", "options": map[string]any{"min": 50, "max": 10}}},
		}}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, s, "/generate", tc.body)
			assert.Equal(t, tc.code, resp.StatusCode)

			var out struct {
				Error string `json:"error"`
			}
			decode(t, resp, &out)
			assert.NotEmpty(t, out.Error)
		})
	}
}

func TestShutdown(t *testing.T) {
	s := newServer(t)
	assert.NoError(t, s.Shutdown(context.Background()))
}
