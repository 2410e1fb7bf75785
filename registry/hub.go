// Package registry checks whether image tags exist in a container registry.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
)

// AuthToken is the bearer credential returned by a registry login.
type AuthToken string

// Credentials is the username/token pair used to log in.
type Credentials struct {
	Username string
	Token    string
}

// HubClient talks to the Docker Hub v2 API.
type HubClient struct {
	baseURL     string
	namespace   string
	credentials Credentials
	httpClient  *http.Client
	token       AuthToken
}

// NewHubClient creates a client for repositories under namespace.
func NewHubClient(baseURL, namespace string, credentials Credentials, timeout time.Duration) *HubClient {
	return &HubClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		namespace:   namespace,
		credentials: credentials,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges the configured credentials for a JWT. The token is kept
// for subsequent TagExists calls.
func (c *HubClient) Login(ctx context.Context) (AuthToken, error) {
	slog.Info("Logging into registry", "url", c.baseURL, "username", c.credentials.Username)

	body, err := json.Marshal(loginRequest{Username: c.credentials.Username, Password: c.credentials.Token})
	if err != nil {
		return "", fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "registry",
			"operation", "registry_login",
			"url", c.baseURL,
			"error", err)
		return "", fmt.Errorf("%w: %v", domain.ErrRegistryUnavailable, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("Failed to close login response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("Service operation failed",
			"layer", "registry",
			"operation", "registry_login",
			"url", c.baseURL,
			"status", resp.StatusCode)
		return "", fmt.Errorf("%w: login returned status %d", domain.ErrAuthentication, resp.StatusCode)
	}

	var lr loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&lr); err != nil {
		return "", fmt.Errorf("%w: invalid login response: %v", domain.ErrAuthentication, err)
	}
	if lr.Token == "" {
		return "", fmt.Errorf("%w: login response contains no token", domain.ErrAuthentication)
	}

	c.token = AuthToken(lr.Token)
	slog.Debug("Registry login succeeded", "url", c.baseURL)
	return c.token, nil
}

// TagExists reports whether repository (without namespace) has tag.
// HTTP 200 means the tag exists, every other status means it does not.
func (c *HubClient) TagExists(ctx context.Context, repository, tag string) (domain.TagStatus, error) {
	tagURL := fmt.Sprintf("%s/repositories/%s/%s/tags/%s",
		c.baseURL, url.PathEscape(c.namespace), url.PathEscape(repository), url.PathEscape(tag))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tagURL, nil)
	if err != nil {
		return domain.TagNotFound, fmt.Errorf("failed to create tag request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "JWT "+string(c.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "registry",
			"operation", "registry_check_tag",
			"repository", repository,
			"tag", tag,
			"error", err)
		return domain.TagNotFound, fmt.Errorf("%w: %v", domain.ErrRegistryUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("Failed to close tag response body", "error", closeErr)
		}
	}()

	if resp.StatusCode == http.StatusOK {
		slog.Info("Tag exists", "repository", repository, "tag", tag)
		return domain.TagExists, nil
	}

	slog.Info("Tag does not exist", "repository", repository, "tag", tag, "status", resp.StatusCode)
	return domain.TagNotFound, nil
}
