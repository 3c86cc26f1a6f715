package AI

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Client talks to the external cost-prediction/anomaly service. Both calls
// are fail-soft: any transport error or non-2xx response yields nil, never
// an error. Callers treat nil as "prediction unavailable".
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type PredictCostInput struct {
	DistanceKm     float64 `json:"distancia_km"`
	VehicleType    int     `json:"tipo_vehiculo"`
	EstimatedTolls float64 `json:"peajes_estimados"`
}

type PredictCostOutput struct {
	EstimatedCost float64 `json:"costo_estimado"`
}

type DetectAnomalyInput struct {
	ActualCost    float64 `json:"costo_real"`
	EstimatedCost float64 `json:"costo_estimado_ia"`
	DistanceKm    float64 `json:"distancia_km"`
}

type DetectAnomalyOutput struct {
	IsAnomaly bool   `json:"es_anomalia"`
	Message   string `json:"mensaje"`
}

// PredictCost returns the service's cost estimate, or nil when unavailable.
// The raw response body is returned alongside so callers can persist it.
func (c *Client) PredictCost(in PredictCostInput) (*PredictCostOutput, []byte) {
	var out PredictCostOutput
	raw, ok := c.post("/predict_cost", in, &out)
	if !ok {
		return nil, nil
	}
	return &out, raw
}

// DetectAnomaly returns the service's anomaly verdict, or nil when unavailable.
func (c *Client) DetectAnomaly(in DetectAnomalyInput) (*DetectAnomalyOutput, []byte) {
	var out DetectAnomalyOutput
	raw, ok := c.post("/detect_anomaly", in, &out)
	if !ok {
		return nil, nil
	}
	return &out, raw
}

func (c *Client) post(path string, payload, out interface{}) ([]byte, bool) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("AI %s: encoding payload: %v", path, err)
		return nil, false
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		log.Errorf("AI %s: building request: %v", path, err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Errorf("AI %s: %v", path, err)
		return nil, false
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Errorf("AI %s: reading response: %v", path, err)
		return nil, false
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Errorf("AI %s: status %d: %s", path, resp.StatusCode, truncate(raw, 512))
		return nil, false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		log.Errorf("AI %s: decoding response: %v", path, err)
		return nil, false
	}
	return raw, true
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s... (%d bytes)", b[:n], len(b))
}
