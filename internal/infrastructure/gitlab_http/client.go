package gitlab_http

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/davarch/ci-dashboard/internal/domain"
)

type Client struct {
	baseUrl string
	token   string
	retries int
	hc      *http.Client
}

// New builds a client for a GitLab instance. With retries 0 every request is
// attempted once; the next refresh cycle is the retry.
func New(baseUrl string, token string, timeout time.Duration, retries int) *Client {
	tr := &http.Transport{
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 32,
		IdleConnTimeout:     90 * time.Second,
	}

	if retries < 0 {
		retries = 0
	}

	return &Client{
		baseUrl: trimSlash(baseUrl),
		token:   token,
		retries: retries,
		hc:      &http.Client{Transport: tr, Timeout: timeout},
	}
}

type namespaceDTO struct {
	Name string `json:"name"`
}

type projectDTO struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Namespace namespaceDTO `json:"namespace"`
}

type pipelineDTO struct {
	ID       int64  `json:"id"`
	Ref      string `json:"ref"`
	Status   string `json:"status"`
	Duration *int64 `json:"duration"`
}

type jobDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	WebURL string `json:"web_url"`
}

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var list []projectDTO
	if err := c.get(ctx, c.baseUrl+"/api/v4/projects?membership=true", &list); err != nil {
		return nil, err
	}

	out := make([]domain.Project, 0, len(list))
	for _, p := range list {
		out = append(out, domain.Project{ID: p.ID, Name: p.Name, Group: p.Namespace.Name})
	}
	return out, nil
}

func (c *Client) ListPipelines(ctx context.Context, projectID int64) ([]domain.PipelineSummary, error) {
	u := fmt.Sprintf("%s/api/v4/projects/%d/pipelines?order_by=id&sort=desc", c.baseUrl, projectID)

	var list []pipelineDTO
	if err := c.get(ctx, u, &list); err != nil {
		return nil, err
	}

	out := make([]domain.PipelineSummary, 0, len(list))
	for _, p := range list {
		out = append(out, domain.PipelineSummary{ID: p.ID, Status: domain.MapStatus(p.Status)})
	}
	return out, nil
}

func (c *Client) GetPipelineDetail(ctx context.Context, projectID, pipelineID int64) (domain.PipelineDetail, error) {
	u := fmt.Sprintf("%s/api/v4/projects/%d/pipelines/%d", c.baseUrl, projectID, pipelineID)

	var p pipelineDTO
	if err := c.get(ctx, u, &p); err != nil {
		return domain.PipelineDetail{}, err
	}

	d := domain.PipelineDetail{ID: p.ID, Status: domain.MapStatus(p.Status), Ref: p.Ref}
	if p.Duration != nil && *p.Duration > 0 {
		d.Duration = *p.Duration
	}
	return d, nil
}

func (c *Client) ListJobs(ctx context.Context, projectID, pipelineID int64) ([]domain.Job, error) {
	u := fmt.Sprintf("%s/api/v4/projects/%d/pipelines/%d/jobs", c.baseUrl, projectID, pipelineID)

	var list []jobDTO
	if err := c.get(ctx, u, &list); err != nil {
		return nil, err
	}

	out := make([]domain.Job, 0, len(list))
	for _, j := range list {
		out = append(out, domain.Job{Name: j.Name, Status: domain.MapStatus(j.Status), Link: j.WebURL})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %s: %w", domain.ErrTransport, url, err))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("PRIVATE-TOKEN", c.token)

		resp, err := c.hc.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}

		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests {
			if ra := resp.Header.Get("Retry-After"); ra != "" && c.retries > 0 {
				if sec, _ := strconv.Atoi(ra); sec > 0 {
					select {
					case <-time.After(time.Duration(sec) * time.Second):
					case <-ctx.Done():
						return backoff.Permanent(ctx.Err())
					}
				}
			}

			return fmt.Errorf("%w: %s: gitlab 429", domain.ErrTransport, url)
		}

		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: %s: gitlab %s", domain.ErrTransport, url, resp.Status)
		}

		if resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("%w: %s: gitlab %s", domain.ErrTransport, url, resp.Status))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %s: %w", domain.ErrDecode, url, err))
		}

		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 300 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 5 * time.Second

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.retries)), ctx))
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
