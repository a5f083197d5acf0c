package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve runs handler against a GET request and returns the recorder
func serve(t *testing.T, handler func(*core.RequestEvent) error, path string, pathValues map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	rec := httptest.NewRecorder()

	e := &core.RequestEvent{}
	e.Request = req
	e.Response = rec

	require.NoError(t, handler(e))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleDataset_RoundsTotals(t *testing.T) {
	svc := NewService(&fakeBuilder{ds: sampleDataset()}, nil, 15)

	rec := serve(t, svc.handleDataset, BasePath, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	totals := body["totales"].(map[string]any)
	enero := totals["enero"].(map[string]any)
	assert.Equal(t, 3.0, enero["ventas"])
	assert.Equal(t, 1500.0, enero["nap"])
	assert.NotContains(t, totals, "marzo")
	assert.Contains(t, body, "ejecutivoCoordinador")
}

func TestHandleSummary(t *testing.T) {
	svc := NewService(&fakeBuilder{ds: sampleDataset()}, nil, 15)

	rec := serve(t, svc.handleSummary, BasePath+"/resumen", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, 4.0, body["totalVentas"])
	assert.Equal(t, 2.0, body["mesesProcesados"])
	assert.Equal(t, 2.0, body["promedioMensualVentas"])
}

func TestHandleTrend(t *testing.T) {
	svc := NewService(&fakeBuilder{ds: sampleDataset()}, nil, 15)

	rec := serve(t, svc.handleTrend, BasePath+"/tendencia", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["labels"], 7)
	assert.Equal(t, []any{3.0, 1.0, 0.0, 0.0, 0.0, 0.0, 0.0}, body["ventas"])
}

func TestHandleCoordinatorsAndProducts(t *testing.T) {
	svc := NewService(&fakeBuilder{ds: sampleDataset()}, nil, 15)

	rec := serve(t, svc.handleCoordinators, BasePath+"/coordinadores", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	coordinators := decode(t, rec)["coordinadores"].(map[string]any)
	assert.Equal(t, []any{2.0, 1.0, 0.0, 0.0, 0.0, 0.0, 0.0}, coordinators["Ana"])
	assert.Equal(t, []any{1.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0}, coordinators["Beto"])

	rec = serve(t, svc.handleProducts, BasePath+"/productos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode(t, rec)["productos"].([]any)
	require.Len(t, products, 2)
	first := products[0].(map[string]any)
	assert.Equal(t, "Oro", first["nombre"])
	assert.Equal(t, 75.0, first["porcentaje"])
}

func TestHandleTopExecutives(t *testing.T) {
	svc := NewService(&fakeBuilder{ds: sampleDataset()}, nil, 15)

	tests := []struct {
		name      string
		value     string
		wantCode  int
		wantCount int
	}{
		{"default", "", http.StatusOK, 2},
		{"limited", "1", http.StatusOK, 1},
		{"zero uses default", "0", http.StatusOK, 2},
		{"not a number", "diez", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, svc.handleTopExecutives, BasePath+"/ejecutivos/top", map[string]string{"cantidad": tt.value})

			require.Equal(t, tt.wantCode, rec.Code)
			body := decode(t, rec)
			if tt.wantCode != http.StatusOK {
				assert.Equal(t, "Cantidad invalida", body["error"])
				return
			}
			executives := body["ejecutivos"].([]any)
			assert.Len(t, executives, tt.wantCount)
			top := executives[0].(map[string]any)
			assert.Equal(t, "Luis", top["nombre"])
			assert.Equal(t, "Ana", top["coordinador"])
			assert.Equal(t, 1.0, top["posicion"])
		})
	}
}

func TestHandlers_BuildErrorIs500(t *testing.T) {
	svc := NewService(&fakeBuilder{err: errors.New("sheet unreachable")}, nil, 15)

	tests := []struct {
		name    string
		handler func(*core.RequestEvent) error
		want    string
	}{
		{"dataset", svc.handleDataset, "Error al obtener datos de Google Sheets"},
		{"summary", svc.handleSummary, "Error al obtener resumen"},
		{"trend", svc.handleTrend, "Error al obtener tendencia"},
		{"coordinators", svc.handleCoordinators, "Error al obtener datos de coordinadores"},
		{"products", svc.handleProducts, "Error al obtener datos de productos"},
		{"executives", svc.handleTopExecutives, "Error al obtener top ejecutivos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.handler, BasePath, nil)

			require.Equal(t, http.StatusInternalServerError, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.want, body["error"])
			assert.Equal(t, "sheet unreachable", body["message"])
		})
	}
}

func TestHandleStatus(t *testing.T) {
	svc := NewService(&fakeBuilder{ds: sampleDataset()}, nil, 15)

	rec := serve(t, svc.handleStatus, BasePath+"/estado", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["meses"])

	serve(t, svc.handleSummary, BasePath+"/resumen", nil)

	rec = serve(t, svc.handleStatus, BasePath+"/estado", nil)
	body := decode(t, rec)
	assert.NotEmpty(t, body["buildId"])
	months := body["meses"].([]any)
	require.Len(t, months, 7)
	assert.Equal(t, "enero", months[0].(map[string]any)["mes"])
	assert.Equal(t, "no_data", months[6].(map[string]any)["resultado"])
}

func TestMetricsHandler(t *testing.T) {
	metrics := NewMetrics()
	svc := NewService(&fakeBuilder{ds: sampleDataset()}, metrics, 15)
	serve(t, svc.handleSummary, BasePath+"/resumen", nil)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, BasePath+"/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `ventas_month_outcomes_total{month="enero",outcome="ok"} 1`), body)
	assert.Contains(t, body, "ventas_build_duration_seconds_count 1")
}

func TestParseLimit(t *testing.T) {
	n, err := parseLimit("", 15)
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	n, err = parseLimit("7", 15)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = parseLimit("-3", 15)
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	_, err = parseLimit("7x", 15)
	assert.Error(t, err)
}

func TestHandleTopExecutives_ZeroUsesConfiguredSize(t *testing.T) {
	svc := NewService(&fakeBuilder{ds: sampleDataset()}, nil, 1)

	for _, value := range []string{"0", "-2", ""} {
		rec := serve(t, svc.handleTopExecutives, BasePath+"/ejecutivos/top/"+value, map[string]string{"cantidad": value})

		require.Equal(t, http.StatusOK, rec.Code)
		executives := decode(t, rec)["ejecutivos"].([]any)
		require.Len(t, executives, 1, "cantidad %q", value)
		assert.Equal(t, "Luis", executives[0].(map[string]any)["nombre"])
	}
}
