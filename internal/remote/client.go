package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rafag508/mycollection/internal/models"
	"github.com/sirupsen/logrus"
)

// Client talks to the remote document store over HTTP. Documents for user U
// in collection C live under /users/{U}/{C}/{id}; a collection listing is a
// JSON array of documents.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userID     func() string // empty when no session is established
	token      func() string
	logger     *logrus.Logger
}

// NewClient creates a new document store client. userID and token are
// evaluated per request so re-authentication needs no re-wiring.
func NewClient(baseURL string, userID, token func() string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userID: userID,
		token:  token,
		logger: logger,
	}
}

func (c *Client) collectionURL(collection models.Collection, id string) (string, error) {
	uid := c.userID()
	if uid == "" {
		return "", ErrNotAuthenticated
	}
	u := fmt.Sprintf("%s/users/%s/%s", c.baseURL, url.PathEscape(uid), url.PathEscape(string(collection)))
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u, nil
}

func (c *Client) do(ctx context.Context, method, u string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
	case http.StatusUnauthorized:
		return nil, ErrNotAuthenticated
	case http.StatusForbidden:
		return nil, ErrPermissionDenied
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// collection adapts the client to the typed Store contract for one
// sub-collection.
type collection[T any] struct {
	client *Client
	name   models.Collection
}

// NewCollection returns the typed store for one of the user's sub-collections
func NewCollection[T any](client *Client, name models.Collection) Store[T] {
	return &collection[T]{client: client, name: name}
}

func (s *collection[T]) ListAll(ctx context.Context) ([]T, error) {
	u, err := s.client.collectionURL(s.name, "")
	if err != nil {
		return nil, err
	}

	raw, err := s.client.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var values []T
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("failed to decode %s listing: %w", s.name, err)
	}
	return values, nil
}

func (s *collection[T]) GetOne(ctx context.Context, id string) (T, error) {
	var value T

	u, err := s.client.collectionURL(s.name, id)
	if err != nil {
		return value, err
	}

	raw, err := s.client.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return value, err
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		return value, fmt.Errorf("failed to decode %s document: %w", s.name, err)
	}
	return value, nil
}

func (s *collection[T]) Upsert(ctx context.Context, id string, value T) error {
	u, err := s.client.collectionURL(s.name, id)
	if err != nil {
		return err
	}

	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", s.name, err)
	}

	_, err = s.client.do(ctx, http.MethodPut, u, body)
	return err
}

func (s *collection[T]) Delete(ctx context.Context, id string) error {
	u, err := s.client.collectionURL(s.name, id)
	if err != nil {
		return err
	}

	_, err = s.client.do(ctx, http.MethodDelete, u, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
