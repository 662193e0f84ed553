package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"normas/internal/config"
	"normas/internal/logger"
	"normas/internal/record"
	apperrors "normas/pkg/errors"
	"normas/pkg/retry"
)

// Client fetches the portal listing page by page. Individual page failures
// are logged and skipped so one bad page does not lose the whole run; the
// page limit bounds how much is fetched per run.
type Client struct {
	httpClient *http.Client
	cfg        config.SourceConfig
	linkBase   string
	limiter    *rate.Limiter
	policy     retry.Policy
	log        logger.Logger
	now        func() time.Time
}

func NewClient(cfg config.SourceConfig, policy retry.Policy, log logger.Logger) (*Client, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, apperrors.ErrConfig.WithMessagef("invalid source base URL %s", cfg.BaseURL).WithCause(err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 1.0
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
		linkBase:   parsed.Scheme + "://" + parsed.Host,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		policy:     policy,
		log:        log,
		now:        time.Now,
	}, nil
}

func (c *Client) Fetch(ctx context.Context) ([]record.Document, error) {
	var all []record.Document

	for page := 0; page < c.cfg.Pages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperrors.ErrSource.WithMessage("fetch interrupted").WithCause(err)
		}

		pageURL := c.pageURL(page)
		body, err := c.fetchPage(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, apperrors.ErrSource.WithMessage("fetch interrupted").WithCause(ctx.Err())
			}
			c.log.Warnw("Failed to fetch listing page, skipping",
				"page", page,
				"url", pageURL,
				"error", err,
			)
			continue
		}

		docs, err := ParseListing(bytes.NewReader(body), ParseOptions{
			Entity:       c.cfg.Entity,
			LinkBase:     c.linkBase,
			ComponentIDs: c.cfg.ComponentIDs,
			FetchedAt:    c.now(),
		})
		if err != nil {
			c.log.Warnw("Failed to parse listing page, skipping",
				"page", page,
				"error", err,
			)
			continue
		}

		c.log.Debugw("Fetched listing page",
			"page", page,
			"records", len(docs),
		)
		all = append(all, docs...)
	}

	c.log.Infow("Fetch complete",
		"pages", c.cfg.Pages,
		"records", len(all),
	)
	return all, nil
}

func (c *Client) pageURL(page int) string {
	if page == 0 {
		return c.cfg.BaseURL
	}
	return c.cfg.BaseURL + "&page=" + strconv.Itoa(page)
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	var body []byte

	err := retry.Retry(ctx, c.policy, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return retry.NewFatalError(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, pageURL)
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}
