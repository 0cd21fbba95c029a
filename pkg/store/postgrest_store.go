package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/supabase-community/postgrest-go"

	"guestbook/pkg/domain"
)

// PostgRESTStore talks to a hosted table through a PostgREST endpoint such as
// the one Supabase exposes under /rest/v1.
type PostgRESTStore struct {
	client *postgrest.Client
	table  string
}

// APIError represents a non-2xx PostgREST response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("postgrest: %d: %s", e.Status, e.Message)
}

// NewPostgRESTStore constructs a client. A nil transport uses
// http.DefaultTransport.
func NewPostgRESTStore(baseURL, apiKey, table string, transport http.RoundTripper) (*PostgRESTStore, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("postgrest base URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid postgrest base URL: %w", err)
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("postgrest API key is required")
	}
	table, err := resolveTable(table)
	if err != nil {
		return nil, err
	}
	client, err := postgrest.NewClientWithError(baseURL+"/rest/v1", "public", map[string]string{
		"apikey":        apiKey,
		"Authorization": "Bearer " + apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("init postgrest client: %w", err)
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	client.Transport.Parent = &statusTransport{next: transport}
	return &PostgRESTStore{client: client, table: table}, nil
}

type insertRow struct {
	Name      string `json:"name"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// InsertEntry posts the row and reads back the representation to learn the id.
func (s *PostgRESTStore) InsertEntry(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	ctx, status := withStatus(ctx)
	var rows []domain.Entry
	_, err := s.client.From(s.table).
		Insert(insertRow{Name: e.Name, Message: e.Message, Timestamp: e.Timestamp}, false, "", "representation", "").
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return domain.Entry{}, status.wrap(err)
	}
	if len(rows) == 0 {
		return domain.Entry{}, errors.New("postgrest: insert returned no rows")
	}
	return rows[0], nil
}

// ListEntries selects all rows ordered by id descending.
func (s *PostgRESTStore) ListEntries(ctx context.Context) ([]domain.Entry, error) {
	ctx, status := withStatus(ctx)
	rows := make([]domain.Entry, 0)
	_, err := s.client.From(s.table).
		Select("*", "", false).
		Order("id", &postgrest.OrderOpts{Ascending: false}).
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, status.wrap(err)
	}
	return rows, nil
}

// DeleteEntry filters on id; PostgREST answers 204 whether or not a row matched.
func (s *PostgRESTStore) DeleteEntry(ctx context.Context, id int64) error {
	ctx, status := withStatus(ctx)
	_, _, err := s.client.From(s.table).
		Delete("minimal", "").
		Eq("id", strconv.FormatInt(id, 10)).
		ExecuteWithContext(ctx)
	if err != nil {
		return status.wrap(err)
	}
	return nil
}

// responseStatus receives the HTTP status of the request it travels with.
// The client reports errors as "(code) message" text only.
type responseStatus struct {
	code int
}

type responseStatusKey struct{}

func withStatus(ctx context.Context) (context.Context, *responseStatus) {
	rs := &responseStatus{}
	return context.WithValue(ctx, responseStatusKey{}, rs), rs
}

func (rs *responseStatus) wrap(err error) error {
	if rs.code < 400 {
		return fmt.Errorf("postgrest: %w", err)
	}
	apiErr := &APIError{Status: rs.code, Message: err.Error()}
	if rest, ok := strings.CutPrefix(apiErr.Message, "("); ok {
		if code, msg, ok := strings.Cut(rest, ") "); ok {
			apiErr.Code, apiErr.Message = code, msg
		}
	}
	return apiErr
}

type statusTransport struct {
	next http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err == nil {
		if rs, ok := req.Context().Value(responseStatusKey{}).(*responseStatus); ok {
			rs.code = resp.StatusCode
		}
	}
	return resp, err
}
