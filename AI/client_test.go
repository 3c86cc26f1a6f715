package AI

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictCost(t *testing.T) {
	var gotPayload PredictCostInput
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict_cost", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]float64{"costo_estimado": 731.50})
	}))
	defer server.Close()

	out, raw := NewClient(server.URL).PredictCost(PredictCostInput{
		DistanceKm:     420,
		VehicleType:    2,
		EstimatedTolls: 60,
	})
	require.NotNil(t, out)
	assert.Equal(t, 731.50, out.EstimatedCost)
	assert.Contains(t, string(raw), "costo_estimado")
	assert.Equal(t, float64(420), gotPayload.DistanceKm)
	assert.Equal(t, 2, gotPayload.VehicleType)
}

func TestPredictCostServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	out, raw := NewClient(server.URL).PredictCost(PredictCostInput{DistanceKm: 100})
	assert.Nil(t, out)
	assert.Nil(t, raw)
}

func TestPredictCostUnreachableService(t *testing.T) {
	out, raw := NewClient("http://127.0.0.1:1").PredictCost(PredictCostInput{DistanceKm: 100})
	assert.Nil(t, out)
	assert.Nil(t, raw)
}

func TestPredictCostMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	out, _ := NewClient(server.URL).PredictCost(PredictCostInput{DistanceKm: 100})
	assert.Nil(t, out)
}

func TestDetectAnomaly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/detect_anomaly", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"es_anomalia": true,
			"mensaje":     "El costo real excede lo esperado.",
		})
	}))
	defer server.Close()

	out, _ := NewClient(server.URL).DetectAnomaly(DetectAnomalyInput{
		ActualCost:    900,
		EstimatedCost: 500,
		DistanceKm:    300,
	})
	require.NotNil(t, out)
	assert.True(t, out.IsAnomaly)
	assert.Equal(t, "El costo real excede lo esperado.", out.Message)
}
