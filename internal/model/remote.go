package model

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const maxErrorBody = 512

// Remote delegates scoring to an external model server that accepts
// {"features":[...]} and answers {"probability":p}.
type Remote struct {
	url    string
	client *http.Client
}

type remoteRequest struct {
	Features []float64 `json:"features"`
}

type remoteResponse struct {
	Probability *float64 `json:"probability"`
}

func NewRemote(url string, timeout time.Duration) *Remote {
	return &Remote{
		url:    strings.TrimRight(url, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// PredictProba posts the features to the remote /predict endpoint.
func (r *Remote) PredictProba(ctx context.Context, features []float64) (float64, error) {
	body, err := json.Marshal(remoteRequest{Features: features})
	if err != nil {
		return 0, errors.Wrap(err, "error encoding features")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, errors.Wrap(err, "error creating predict request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "model server unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, errors.Errorf("model server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, errors.Wrap(err, "error decoding model response")
	}
	if out.Probability == nil {
		return 0, errors.New("model response missing probability")
	}
	return *out.Probability, nil
}

// Ping checks the remote /health endpoint.
func (r *Remote) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url+"/health", nil)
	if err != nil {
		return errors.Wrap(err, "error creating health request")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "model server unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unhealthy: %d", resp.StatusCode)
	}
	return nil
}
