package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fcttechnologies/VillainArc-sub000/internal/telemetry/metrics"
	"github.com/fcttechnologies/VillainArc-sub000/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	configCacheExpireSeconds = 60 * 60
	defaultCallTimeout       = 10 * time.Second
)

// HTTPClassifier talks to the external classifier service over JSON.
// Any transport, decoding or timeout failure is a soft failure: the
// client logs it and reports "no result".
type HTTPClassifier struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	cache       *freecache.Cache
	callTimeout time.Duration

	// Metrics is optional; call and failure counters when set.
	Metrics *metrics.Manager
}

func NewHTTPClassifier(baseURL, apiKey string, httpClient *http.Client) *HTTPClassifier {
	megabyte := 1024 * 1024
	return &HTTPClassifier{
		baseURL:     baseURL,
		apiKey:      apiKey,
		httpClient:  httpClient,
		cache:       freecache.NewCache(10 * megabyte),
		callTimeout: defaultCallTimeout,
	}
}

func (c *HTTPClassifier) InferConfiguration(ctx context.Context, req ConfigurationRequest) (*ConfigurationResult, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "classifier.http.inferConfiguration")
	defer span.End()

	cacheKey := fmt.Sprintf("config::%s::%d", req.ExerciseID, req.Snapshot.ID)
	if cached, err := c.cache.Get([]byte(cacheKey)); err == nil {
		result := &ConfigurationResult{}
		if err := json.Unmarshal(cached, result); err == nil {
			return result, nil
		}
		log.Errorf("unmarshal cached configuration for exercise %s: %s", req.ExerciseID, err)
	}

	result := &ConfigurationResult{}
	body, ok := c.post(ctx, "/v1/configuration", req, result)
	if !ok {
		return nil, nil
	}
	if !result.Valid() {
		log.Debugf("classifier returned unusable configuration for exercise %s", req.ExerciseID)
		return nil, nil
	}

	if err := c.cache.Set([]byte(cacheKey), body, configCacheExpireSeconds); err != nil {
		log.Errorf("cache configuration result for exercise %s: %s", req.ExerciseID, err)
	}

	return result, nil
}

func (c *HTTPClassifier) InferOutcome(ctx context.Context, req OutcomeRequest) (*OutcomeResult, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "classifier.http.inferOutcome")
	defer span.End()

	result := &OutcomeResult{}
	if _, ok := c.post(ctx, "/v1/outcome", req, result); !ok {
		return nil, nil
	}
	if !result.Normalize() {
		log.Debugf("classifier returned unusable outcome for group %s", req.GroupID)
		return nil, nil
	}
	return result, nil
}

// post performs the JSON call; false means "no result" for any reason.
func (c *HTTPClassifier) post(ctx context.Context, path string, payload, out any) (_ []byte, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	if c.Metrics != nil {
		c.Metrics.CounterClassifierCalls.Inc()
		defer func() {
			if !ok {
				c.Metrics.CounterClassifierFailures.Inc()
			}
		}()
	}

	reqBytes, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal classifier request: %s", err)
		return nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBytes))
	if err != nil {
		log.Errorf("new classifier request: %s", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// timeouts included: treated the same as unavailable
		log.Warnf("classifier call %s failed: %s", path, err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("classifier call %s: unexpected status %d", path, resp.StatusCode)
		return nil, false
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warnf("read classifier response: %s", err)
		return nil, false
	}

	if err := json.Unmarshal(respBytes, out); err != nil {
		log.Warnf("unmarshal classifier response: %s", err)
		return nil, false
	}

	return respBytes, true
}
