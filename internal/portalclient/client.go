// Package portalclient is a typed client for the maintenance portal REST API.
package portalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/williamsps/maintenance-portal/internal/model"
)

const (
	clientContextHeader = "X-Client-Context"
	defaultTimeout      = 30 * time.Second
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx answer from the portal.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
	Details map[string]interface{}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("portal: %d %s", e.Status, e.Message)
}

// FieldMessages indexes field errors by field path.
func (e *APIError) FieldMessages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type envelope struct {
	Success    bool                   `json:"success"`
	Data       json.RawMessage        `json:"data"`
	Message    string                 `json:"message"`
	Pagination *model.Pagination      `json:"pagination"`
	Errors     []FieldError           `json:"errors"`
	Details    map[string]interface{} `json:"details"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		session:    session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := c.session.ClientContext(); id != nil {
		req.Header.Set(clientContextHeader, id.String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message, Fields: env.Errors, Details: env.Details}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode %s %s: %w", method, path, decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return &env, nil
}

type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// Login exchanges credentials for a token and initializes the session with it.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	body := map[string]string{"email": email, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	if err := c.session.Init(result.Token); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout revokes the token server side and tears the session down either way.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.Teardown()
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	return err
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if _, err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type Quote struct {
	model.Quote
	BreakdownTotal   float64  `json:"breakdown_total"`
	AvailableActions []string `json:"available_actions"`
}

type QuoteFilter struct {
	Status string
	Search string
	Urgent *bool
	Page   int
	Limit  int
}

func (f QuoteFilter) query() string {
	values := url.Values{}
	if f.Status != "" {
		values.Set("status", f.Status)
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if f.Urgent != nil {
		values.Set("urgent", strconv.FormatBool(*f.Urgent))
	}
	if f.Page > 0 {
		values.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		values.Set("limit", strconv.Itoa(f.Limit))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func (c *Client) ListQuotes(ctx context.Context, filter QuoteFilter) ([]Quote, model.Pagination, error) {
	var quotes []Quote
	env, err := c.do(ctx, http.MethodGet, "/quotes"+filter.query(), nil, &quotes)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	var page model.Pagination
	if env.Pagination != nil {
		page = *env.Pagination
	}
	return quotes, page, nil
}

func (c *Client) GetQuote(ctx context.Context, id uuid.UUID) (*Quote, error) {
	var quote Quote
	if _, err := c.do(ctx, http.MethodGet, "/quotes/"+id.String(), nil, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

type ConvertInput struct {
	ScheduleDate string `json:"schedule_date,omitempty"`
	PONumber     string `json:"po_number,omitempty"`
	Version      *int   `json:"version,omitempty"`
}

func (c *Client) ConvertQuote(ctx context.Context, quoteID uuid.UUID, input ConvertInput) (*model.WorkOrder, error) {
	var order model.WorkOrder
	if _, err := c.do(ctx, http.MethodPost, "/quotes/"+quoteID.String()+"/convert", input, &order); err != nil {
		return nil, err
	}
	if order.ID == uuid.Nil {
		return nil, errors.New("portal: conversion returned no work order id")
	}
	return &order, nil
}

// ConvertAndOpen converts an approved quote and loads the work order it produced.
func (c *Client) ConvertAndOpen(ctx context.Context, quoteID uuid.UUID, input ConvertInput) (*model.WorkOrder, error) {
	created, err := c.ConvertQuote(ctx, quoteID, input)
	if err != nil {
		return nil, err
	}
	return c.GetWorkOrder(ctx, created.ID)
}

func (c *Client) GetWorkOrder(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error) {
	var order model.WorkOrder
	if _, err := c.do(ctx, http.MethodGet, "/work-orders/"+id.String(), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) SetWorkOrderUrgent(ctx context.Context, id uuid.UUID, urgent bool) (*model.WorkOrder, error) {
	var order model.WorkOrder
	body := map[string]bool{"is_urgent": urgent}
	if _, err := c.do(ctx, http.MethodPatch, "/work-orders/"+id.String(), body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ToggleUrgent flips the work order's urgent flag tentatively and settles it
// on the server's answer. The previous value is restored when the write fails.
func (c *Client) ToggleUrgent(ctx context.Context, id uuid.UUID, flag *Optimistic[bool]) (bool, error) {
	return flag.Apply(ctx, !flag.Value(), func(ctx context.Context, urgent bool) (bool, error) {
		order, err := c.SetWorkOrderUrgent(ctx, id, urgent)
		if err != nil {
			return false, err
		}
		return order.IsUrgent, nil
	})
}

func (c *Client) ListAlerts(ctx context.Context, unreadOnly bool) ([]model.Alert, error) {
	path := "/alerts"
	if unreadOnly {
		path += "?unread=true"
	}
	var alerts []model.Alert
	if _, err := c.do(ctx, http.MethodGet, path, nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (c *Client) UnreadAlertCount(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/alerts/unread-count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// StartAlertPolling polls the unread alert count for the client's session.
func (c *Client) StartAlertPolling(ctx context.Context, interval time.Duration, onCount func(int64)) error {
	return c.session.StartAlertPolling(ctx, c, interval, onCount)
}
