// Package sheetapi is the typed client for the spreadsheet-backed payroll
// API. The upstream is a single HTTP endpoint that multiplexes on an
// action query parameter and wraps every reply in a
// {status, data|record, error} envelope; this package decodes that
// envelope exactly once and hands typed results (or typed errors) to the
// rest of the system.
package sheetapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kylewu/payroll-console/internal/domain/entity"
	"github.com/kylewu/payroll-console/internal/minguo"
)

// Config holds client settings.
type Config struct {
	// BaseURL is the deployed Apps Script exec URL.
	BaseURL string

	// Timeout bounds each HTTP call. Zero leaves the http.Client default.
	Timeout time.Duration

	// IDToken, when set, is attached to every call unless a per-request
	// token is present on the context. The client performs no
	// authorization logic itself; the token is passed through opaquely.
	IDToken string
}

// Client talks to the sheet endpoint.
type Client struct {
	baseURL    string
	idToken    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a sheet API client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		idToken:    cfg.IDToken,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type tokenKey struct{}

// ContextWithToken attaches a per-request id_token that overrides the
// configured one for calls made with this context.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) token(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey{}).(string); ok && t != "" {
		return t
	}
	return c.idToken
}

// envelope is the upstream reply wrapper. List actions populate data,
// single-record actions populate record.
type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
	Record json.RawMessage `json:"record"`
}

func (c *Client) get(ctx context.Context, action string, params url.Values) (*envelope, error) {
	params.Set("action", action)
	if t := c.token(ctx); t != "" {
		params.Set("id_token", t)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, action)
}

func (c *Client) postForm(ctx context.Context, action string, fields url.Values) (*envelope, error) {
	fields.Set("action", action)
	if t := c.token(ctx); t != "" {
		fields.Set("id_token", t)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(fields.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, action)
}

func (c *Client) do(req *http.Request, action string) (*envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("sheet api call failed",
			zap.String("action", action),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", action, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("sheet api non-2xx",
			zap.String("action", action),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%s: unexpected status %d", action, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%s: decode envelope: %w", action, err)
	}
	if env.Status != "success" {
		return nil, envelopeError(action, env.Error)
	}
	return &env, nil
}

// ListEmployees fetches the full roster. The upstream has no pagination.
func (c *Client) ListEmployees(ctx context.Context) ([]entity.Employee, error) {
	env, err := c.get(ctx, "listEmployees", url.Values{})
	if err != nil {
		return nil, err
	}
	var wire []wireEmployee
	if err := json.Unmarshal(env.Data, &wire); err != nil {
		return nil, fmt.Errorf("listEmployees: decode data: %w", err)
	}
	out := make([]entity.Employee, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toEntity())
	}
	return out, nil
}

// GetPayroll fetches one employee-month payslip.
func (c *Client) GetPayroll(ctx context.Context, employeeID string, year, month int) (*entity.PayrollRecord, error) {
	params := url.Values{}
	params.Set("id", minguo.RecordID(employeeID, year, month))
	env, err := c.get(ctx, "getPayroll", params)
	if err != nil {
		return nil, err
	}
	return decodePayroll(env.Record, "getPayroll")
}

// GetLeave fetches one employee-month leave record. The upstream spells
// this action all lowercase.
func (c *Client) GetLeave(ctx context.Context, employeeID string, year, month int) (*entity.LeaveRecord, error) {
	params := url.Values{}
	params.Set("id", minguo.RecordID(employeeID, year, month))
	env, err := c.get(ctx, "getleave", params)
	if err != nil {
		return nil, err
	}
	if len(env.Record) == 0 || string(env.Record) == "null" {
		return nil, fmt.Errorf("getleave: empty record: %w", ErrNotFound)
	}
	var w wireLeave
	if err := json.Unmarshal(env.Record, &w); err != nil {
		return nil, fmt.Errorf("getleave: decode record: %w", err)
	}
	return w.toEntity(), nil
}

// ListRecords fetches every payroll record for an ROC year-month.
func (c *Client) ListRecords(ctx context.Context, year, month int) ([]entity.PayrollRecord, error) {
	params := url.Values{}
	params.Set("year", strconv.Itoa(year))
	params.Set("month", fmt.Sprintf("%02d", month))
	env, err := c.get(ctx, "listRecords", params)
	if err != nil {
		return nil, err
	}
	var wire []wirePayroll
	if err := json.Unmarshal(env.Data, &wire); err != nil {
		return nil, fmt.Errorf("listRecords: decode data: %w", err)
	}
	out := make([]entity.PayrollRecord, 0, len(wire))
	for _, w := range wire {
		out = append(out, *w.toEntity())
	}
	return out, nil
}

func decodePayroll(raw json.RawMessage, action string) (*entity.PayrollRecord, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%s: empty record: %w", action, ErrNotFound)
	}
	var w wirePayroll
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%s: decode record: %w", action, err)
	}
	return w.toEntity(), nil
}

// CreateEmployee adds a roster entry.
func (c *Client) CreateEmployee(ctx context.Context, e entity.Employee) error {
	_, err := c.postForm(ctx, "createemployee", employeeForm(e))
	return err
}

// UpdateEmployee rewrites a roster entry.
func (c *Client) UpdateEmployee(ctx context.Context, e entity.Employee) error {
	_, err := c.postForm(ctx, "updateemployee", employeeForm(e))
	return err
}

// DeleteEmployee removes a roster entry by employee code.
func (c *Client) DeleteEmployee(ctx context.Context, employeeID string) error {
	v := url.Values{}
	v.Set("employee_id", employeeID)
	_, err := c.postForm(ctx, "deleteemployee", v)
	return err
}

// CreatePayroll submits a new payslip. The record's ID must come from
// minguo.RecordID.
func (c *Client) CreatePayroll(ctx context.Context, r *entity.PayrollRecord) error {
	_, err := c.postForm(ctx, "createpayroll", payrollForm(r))
	return err
}

// UpdatePayroll rewrites an existing payslip.
func (c *Client) UpdatePayroll(ctx context.Context, r *entity.PayrollRecord) error {
	_, err := c.postForm(ctx, "updatepayroll", payrollForm(r))
	return err
}

// DeletePayroll removes a payslip by composite id.
func (c *Client) DeletePayroll(ctx context.Context, recordID string) error {
	v := url.Values{}
	v.Set("id", recordID)
	_, err := c.postForm(ctx, "deletepayroll", v)
	return err
}

// CreateLeave submits a new leave record.
func (c *Client) CreateLeave(ctx context.Context, r *entity.LeaveRecord) error {
	_, err := c.postForm(ctx, "createleave", leaveForm(r))
	return err
}

// UpdateLeave rewrites an existing leave record.
func (c *Client) UpdateLeave(ctx context.Context, r *entity.LeaveRecord) error {
	_, err := c.postForm(ctx, "updateleave", leaveForm(r))
	return err
}

// DeleteLeave removes a leave record by composite id.
func (c *Client) DeleteLeave(ctx context.Context, recordID string) error {
	v := url.Values{}
	v.Set("id", recordID)
	_, err := c.postForm(ctx, "deleteleave", v)
	return err
}
