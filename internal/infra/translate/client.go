// Package translate wraps the external CAD model-translation service behind
// a narrow interface so implementations stay swappable: the upload pipeline
// only ever sees Submit returning a handle or an error.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/buildvault/bimlibrary/internal/config"
	"github.com/buildvault/bimlibrary/internal/pkg/apperr"
)

// Client submits a stored model binary for translation and returns the
// stable handle required to load the processed model. The contract is
// synchronous at this boundary; the HTTP implementation polls internally.
type Client interface {
	Submit(ctx context.Context, sourceURL, displayName string) (string, error)
}

// PollObserver is notified of individual status-poll outcomes
// (pending, done, error); used for metrics.
type PollObserver interface {
	ObserveTranslationPoll(outcome string)
}

type jobStatus string

const (
	statusPending jobStatus = "pending"
	statusDone    jobStatus = "done"
	statusFailed  jobStatus = "failed"
)

type submitRequest struct {
	SourceURL   string `json:"source_url"`
	DisplayName string `json:"display_name"`
}

type jobResponse struct {
	JobID  string    `json:"job_id"`
	Status jobStatus `json:"status"`
	Handle string    `json:"handle,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

type httpClient struct {
	base     string
	token    string
	http     *http.Client
	cfg      config.TranslateConfig
	log      *zap.Logger
	observer PollObserver
}

func NewHTTPClient(cfg config.TranslateConfig, log *zap.Logger, observer PollObserver) Client {
	return &httpClient{
		base:     cfg.BaseURL,
		token:    cfg.Token,
		http:     &http.Client{Timeout: 30 * time.Second},
		cfg:      cfg,
		log:      log,
		observer: observer,
	}
}

func (c *httpClient) Submit(ctx context.Context, sourceURL, displayName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	job, err := c.submitJob(ctx, sourceURL, displayName)
	if err != nil {
		return "", err
	}

	if job.Status == statusDone && job.Handle != "" {
		return job.Handle, nil
	}
	if job.Status == statusFailed {
		return "", apperr.Translation("translation rejected: " + job.Reason)
	}

	return c.awaitHandle(ctx, job.JobID)
}

func (c *httpClient) submitJob(ctx context.Context, sourceURL, displayName string) (*jobResponse, error) {
	body, err := json.Marshal(submitRequest{SourceURL: sourceURL, DisplayName: displayName})
	if err != nil {
		return nil, apperr.Translation("encode submit request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/jobs", bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Translation("build submit request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Translation("submit translation job", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperr.Translation(fmt.Sprintf("translation service returned %d: %s", resp.StatusCode, snippet))
	}

	var job jobResponse
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, apperr.Translation("decode submit response", err)
	}
	return &job, nil
}

// awaitHandle polls job status with capped exponential backoff until the job
// completes, fails, or the deadline expires.
func (c *httpClient) awaitHandle(ctx context.Context, jobID string) (string, error) {
	var handle string

	err := retry.Do(
		func() error {
			job, err := c.poll(ctx, jobID)
			if err != nil {
				c.observePoll("error")
				return retry.Unrecoverable(err)
			}

			switch job.Status {
			case statusDone:
				c.observePoll("done")
				if job.Handle == "" {
					return retry.Unrecoverable(apperr.Translation("job done but no handle returned"))
				}
				handle = job.Handle
				return nil
			case statusFailed:
				c.observePoll("error")
				return retry.Unrecoverable(apperr.Translation("translation failed: " + job.Reason))
			default:
				c.observePoll("pending")
				return fmt.Errorf("job %s still pending", jobID)
			}
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(c.cfg.PollInterval),
		retry.MaxDelay(c.cfg.PollMax),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", apperr.Translation("translation timed out", ctxErr)
		}
		if apperr.IsKind(err, apperr.KindTranslation) {
			return "", err
		}
		return "", apperr.Translation("await translation", err)
	}

	return handle, nil
}

func (c *httpClient) poll(ctx context.Context, jobID string) (*jobResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/jobs/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status poll returned %d: %s", resp.StatusCode, snippet)
	}

	var job jobResponse
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *httpClient) observePoll(outcome string) {
	if c.observer != nil {
		c.observer.ObserveTranslationPoll(outcome)
	}
}
