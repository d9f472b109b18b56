package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// ErrClassification wraps every failure of the external model call. Handlers
// match it to distinguish "upstream broke" from ledger and credential errors.
var ErrClassification = errors.New("classification failed")

// maxPredictions caps the ranked result list returned to clients.
const maxPredictions = 5

// Prediction is one ranked label from the model
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier is the external model capability: raw image bytes in, ranked
// (label, confidence) pairs out
type Classifier interface {
	Classify(ctx context.Context, image []byte) ([]Prediction, error)
}

// HTTPClassifier talks to a model inference server over HTTP
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClassifier creates a new HTTPClassifier for the given endpoint
func NewHTTPClassifier(endpoint string) *HTTPClassifier {
	return &HTTPClassifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type inferenceResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Classify posts the image to the inference server and returns up to five
// predictions ordered by descending confidence
func (c *HTTPClassifier) Classify(ctx context.Context, image []byte) ([]Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("%w: building inference request: %v", ErrClassification, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calling inference server: %v", ErrClassification, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: inference server returned %s", ErrClassification, resp.Status)
	}

	var decoded inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding inference response: %v", ErrClassification, err)
	}

	predictions := decoded.Predictions
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Confidence > predictions[j].Confidence
	})
	if len(predictions) > maxPredictions {
		predictions = predictions[:maxPredictions]
	}

	return predictions, nil
}
