package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL   = "https://classifier.openlore.io"
	moderatePath     = "/v1/moderate"
	maxResponseBytes = 64 * 1024
)

// ErrUnavailable marks transient classifier failures (network errors,
// non-2xx responses). The task runner retries these; nothing else on the
// moderation path is retryable.
var ErrUnavailable = errors.New("classifier unavailable")

// IsTransient reports whether err is a retryable classifier failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// moderateRequest is the wire format consumed by the classifier service.
type moderateRequest struct {
	SystemInstruction string `json:"system_instruction"`
	Text              string `json:"text"`
}

// wireVerdict is the classifier's response. The decision field uses an
// inverted boolean convention: "true" means the text COMPLIES with
// policy, "false" means it VIOLATES policy. Downstream report semantics
// depend on this mapping, so it must not be "fixed".
type wireVerdict struct {
	Decision       string   `json:"decision"`
	Confidence     float64  `json:"confidence"`
	ViolationTypes []string `json:"violation_types"`
}

func (w wireVerdict) toVerdict() (Verdict, error) {
	var decision Decision
	switch w.Decision {
	case "true":
		decision = DecisionSafe
	case "false":
		decision = DecisionUnsafe
	case "unknown":
		decision = DecisionUncertain
	default:
		return Verdict{}, fmt.Errorf("invalid decision %q", w.Decision)
	}

	v := Verdict{
		Decision:       decision,
		Confidence:     w.Confidence,
		ViolationTypes: w.ViolationTypes,
	}
	if err := v.Validate(); err != nil {
		return Verdict{}, err
	}
	return v, nil
}

// Classifier wraps a single call to the external content classifier.
type Classifier struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewClassifier builds a classifier client. The API key may come from the
// argument or the CLASSIFIER_API_KEY environment variable; a missing key
// is a configuration error surfaced here, not at call time.
func NewClassifier(apiKey, baseURL string, log *zap.Logger) (*Classifier, error) {
	if apiKey == "" {
		apiKey = os.Getenv("CLASSIFIER_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("classifier API key is required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Classifier{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}, nil
}

// Moderate classifies one unit of text in the given review context.
//
// Empty or whitespace-only text short-circuits to a safe verdict without
// a network call. Transport failures and non-2xx statuses return an
// ErrUnavailable-tagged error; malformed or schema-invalid responses are
// absorbed into the default uncertain verdict, because the caller
// aggregates across many units and a single bad response should degrade
// the review, not abort it.
func (c *Classifier) Moderate(ctx context.Context, text string, rctx Context) (Verdict, error) {
	if strings.TrimSpace(text) == "" {
		return SafeVerdict(), nil
	}

	payload, err := json.Marshal(moderateRequest{
		SystemInstruction: buildInstruction(rctx),
		Text:              text,
	})
	if err != nil {
		return Verdict{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+moderatePath, bytes.NewReader(payload))
	if err != nil {
		return Verdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Verdict{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var wire wireVerdict
	if err := dec.Decode(&wire); err != nil {
		c.log.Warn("classifier returned malformed JSON, using default verdict",
			zap.String("context", string(rctx)), zap.Error(err))
		return DefaultVerdict(), nil
	}

	verdict, err := wire.toVerdict()
	if err != nil {
		c.log.Warn("classifier verdict failed validation, using default verdict",
			zap.String("context", string(rctx)), zap.Error(err))
		return DefaultVerdict(), nil
	}

	return verdict, nil
}
