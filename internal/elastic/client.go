package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Client talks to the cluster's _snapshot administrative API. One client is
// built per run from the metadata's config.url; no authentication headers
// are attached (auth, if any, rides in the URL or the network layer).
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		log: log,
	}
}

func repositoryURI(repository string) string {
	return fmt.Sprintf("/_snapshot/%s", repository)
}

func verifyURI(repository string) string {
	return fmt.Sprintf("/_snapshot/%s/_verify?pretty", repository)
}

func snapshotURI(repository, snapshot string) string {
	return fmt.Sprintf("/_snapshot/%s/%s?pretty", repository, snapshot)
}

// Reachable reports whether a plain GET against the base URL answers with a
// success status. It gates every subsequent API call; an unroutable cluster
// yields false, never an error.
func (c *Client) Reachable(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get("/")
	if err != nil {
		c.log.Warn().Err(err).Msg("cluster unreachable")
		return false
	}
	return resp.IsSuccess()
}

// RegisterRepository PUTs the bucket payload to /_snapshot/{repository} and
// returns the HTTP status code. When the cluster is unreachable or the
// payload file is absent, no network call is made and 404 is reported.
func (c *Client) RegisterRepository(ctx context.Context, repository, payloadPath string) (int, error) {
	if !c.Reachable(ctx) {
		err := &Error{Kind: KindPreconditionNotMet, Op: "register repository", Err: fmt.Errorf("cluster unreachable")}
		return err.Kind.StatusCode(), err
	}
	if _, statErr := os.Stat(payloadPath); statErr != nil {
		err := &Error{Kind: KindPreconditionNotMet, Op: "register repository", Err: fmt.Errorf("payload missing: %w", statErr)}
		return err.Kind.StatusCode(), err
	}

	payload, err := readPayload(payloadPath, "register repository")
	if err != nil {
		return KindOf(err).StatusCode(), err
	}

	resp, reqErr := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Put(repositoryURI(repository))
	if reqErr != nil {
		err := &Error{Kind: KindNetworkFailure, Op: "register repository", Err: reqErr}
		return err.Kind.StatusCode(), err
	}
	return resp.StatusCode(), nil
}

// VerifyRepository POSTs a verify request and returns the decoded response
// body. An unreachable cluster is an explicit precondition failure.
func (c *Client) VerifyRepository(ctx context.Context, repository string) (map[string]any, error) {
	if !c.Reachable(ctx) {
		return nil, &Error{Kind: KindPreconditionNotMet, Op: "verify repository", Err: fmt.Errorf("cluster unreachable")}
	}

	resp, err := c.http.R().SetContext(ctx).Post(verifyURI(repository))
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Op: "verify repository", Err: err}
	}
	return decodeResponse(resp.Body(), "verify repository")
}

// CreateSnapshot PUTs the snapshot payload to
// /_snapshot/{repository}/{snapshot} and returns the decoded response body.
func (c *Client) CreateSnapshot(ctx context.Context, repository, snapshot, payloadPath string) (map[string]any, error) {
	if !c.Reachable(ctx) {
		return nil, &Error{Kind: KindPreconditionNotMet, Op: "create snapshot", Err: fmt.Errorf("cluster unreachable")}
	}
	if _, statErr := os.Stat(payloadPath); statErr != nil {
		return nil, &Error{Kind: KindPreconditionNotMet, Op: "create snapshot", Err: fmt.Errorf("payload missing: %w", statErr)}
	}

	payload, err := readPayload(payloadPath, "create snapshot")
	if err != nil {
		return nil, err
	}

	resp, reqErr := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Put(snapshotURI(repository, snapshot))
	if reqErr != nil {
		return nil, &Error{Kind: KindNetworkFailure, Op: "create snapshot", Err: reqErr}
	}
	return decodeResponse(resp.Body(), "create snapshot")
}

func readPayload(path, op string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Kind: KindNotFound, Op: op, Err: err}
		}
		return nil, &Error{Kind: KindOther, Op: op, Err: err}
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &Error{Kind: KindInvalidPayload, Op: op, Err: err}
	}
	return payload, nil
}

func decodeResponse(body []byte, op string) (map[string]any, error) {
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &Error{Kind: KindInvalidPayload, Op: op, Err: err}
	}
	return decoded, nil
}
