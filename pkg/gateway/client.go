package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/requestid"
)

const (
	headerAppKey    = "x-app-key"
	headerAppSecret = "x-app-secret"

	maxBodySize = 1024 * 64
)

// Client calls the notification REST API. It is safe for concurrent use.
// Zero value is not usable; use New to create instances.
type Client struct {
	baseURL   string
	client    *http.Client
	appKey    string
	appSecret string
	timeout   time.Duration
	headers   map[string]string
	logger    *slog.Logger
	onRequest RequestHook
}

// New creates a gateway client for apiURL.
func New(apiURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(apiURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: api url must be an absolute http(s) URL: %q", ErrInvalidConfiguration, apiURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(apiURL, "/"),
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: 10 * time.Second,
		headers: make(map[string]string),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("gateway"))
	return c, nil
}

// GetHistory returns the stored notifications of a user.
func (c *Client) GetHistory(ctx context.Context, userID string) ([]notifications.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	var raw json.RawMessage
	if err := c.do(ctx, "get_history", http.MethodGet, "/notifications/user/"+seg(userID)+"/history", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList(raw)
}

// GetStats returns read/unread totals for a user.
func (c *Client) GetStats(ctx context.Context, userID string) (notifications.Stats, error) {
	var stats notifications.Stats
	if userID == "" {
		return stats, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	err := c.do(ctx, "get_stats", http.MethodGet, "/notifications/user/"+seg(userID)+"/stats", nil, &stats)
	return stats, err
}

// GetUnreadCount returns the server-side unread count for a user.
func (c *Client) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	var raw json.RawMessage
	if err := c.do(ctx, "get_unread_count", http.MethodGet, "/notifications/user/"+seg(userID)+"/unread-count", nil, &raw); err != nil {
		return 0, err
	}
	return decodeCount(raw, "unreadCount", "count")
}

func (c *Client) MarkAsRead(ctx context.Context, notificationID string) error {
	if notificationID == "" {
		return fmt.Errorf("%w: notification id is required", ErrInvalidArgument)
	}
	return c.do(ctx, "mark_as_read", http.MethodPost, "/notifications/"+seg(notificationID)+"/read", struct{}{}, nil)
}

func (c *Client) MarkAllAsRead(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	return c.do(ctx, "mark_all_as_read", http.MethodPost, "/notifications/user/"+seg(userID)+"/mark-all-read", struct{}{}, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, notificationID string) error {
	if notificationID == "" {
		return fmt.Errorf("%w: notification id is required", ErrInvalidArgument)
	}
	return c.do(ctx, "delete_notification", http.MethodPost, "/notifications/"+seg(notificationID)+"/delete", struct{}{}, nil)
}

// DeleteOldNotifications asks the server to purge a user's expired notifications.
func (c *Client) DeleteOldNotifications(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	return c.do(ctx, "delete_old", http.MethodPost, "/notifications/user/"+seg(userID)+"/delete-old", struct{}{}, nil)
}

func (c *Client) GetDepartmentHistory(ctx context.Context, departmentID string) ([]notifications.Notification, error) {
	if departmentID == "" {
		return nil, fmt.Errorf("%w: department id is required", ErrInvalidArgument)
	}
	var raw json.RawMessage
	if err := c.do(ctx, "get_department_history", http.MethodGet, "/notifications/department/"+seg(departmentID)+"/history", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList(raw)
}

// GetDepartmentSubscribers returns the number of live subscribers of a department.
func (c *Client) GetDepartmentSubscribers(ctx context.Context, departmentID string) (int, error) {
	if departmentID == "" {
		return 0, fmt.Errorf("%w: department id is required", ErrInvalidArgument)
	}
	var raw json.RawMessage
	if err := c.do(ctx, "get_department_subscribers", http.MethodGet, "/notifications/department/"+seg(departmentID)+"/subscribers", nil, &raw); err != nil {
		return 0, err
	}
	return decodeCount(raw, "count", "subscribers")
}

// SendToUser delivers msg to a single user and returns the message id.
func (c *Client) SendToUser(ctx context.Context, userID string, msg Message) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	msg, err := prepare(msg)
	if err != nil {
		return "", err
	}
	return msg.ID, c.do(ctx, "send_to_user", http.MethodPost, "/notifications/user/"+seg(userID), msg, nil)
}

func (c *Client) SendToUsers(ctx context.Context, userIDs []string, msg Message) (string, error) {
	if len(userIDs) == 0 {
		return "", fmt.Errorf("%w: at least one user id is required", ErrInvalidArgument)
	}
	msg, err := prepare(msg)
	if err != nil {
		return "", err
	}
	body := usersMessage{Message: msg, UserIDs: userIDs}
	return msg.ID, c.do(ctx, "send_to_users", http.MethodPost, "/notifications/users", body, nil)
}

func (c *Client) SendToDepartment(ctx context.Context, departmentID string, msg Message) (string, error) {
	if departmentID == "" {
		return "", fmt.Errorf("%w: department id is required", ErrInvalidArgument)
	}
	msg, err := prepare(msg)
	if err != nil {
		return "", err
	}
	return msg.ID, c.do(ctx, "send_to_department", http.MethodPost, "/notifications/department/"+seg(departmentID), msg, nil)
}

func (c *Client) SendToDepartments(ctx context.Context, departmentIDs []string, msg Message) (string, error) {
	if len(departmentIDs) == 0 {
		return "", fmt.Errorf("%w: at least one department id is required", ErrInvalidArgument)
	}
	msg, err := prepare(msg)
	if err != nil {
		return "", err
	}
	body := departmentsMessage{Message: msg, DepartmentIDs: departmentIDs}
	return msg.ID, c.do(ctx, "send_to_departments", http.MethodPost, "/notifications/departments", body, nil)
}

// Broadcast delivers msg to every connected user.
func (c *Client) Broadcast(ctx context.Context, msg Message) (string, error) {
	msg, err := prepare(msg)
	if err != nil {
		return "", err
	}
	return msg.ID, c.do(ctx, "broadcast", http.MethodPost, "/notifications/broadcast", msg, nil)
}

// ListAll returns every stored notification. Admin only.
func (c *Client) ListAll(ctx context.Context) ([]notifications.Notification, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "list_all", http.MethodGet, "/notifications/all", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList(raw)
}

// ClearAll deletes every stored notification. Admin only.
func (c *Client) ClearAll(ctx context.Context) error {
	return c.do(ctx, "clear_all", http.MethodPost, "/notifications/clear-all", struct{}{}, nil)
}

// Queues returns the raw queue status document. Admin only.
func (c *Client) Queues(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "queues", http.MethodGet, "/admin/queues", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func prepare(msg Message) (Message, error) {
	if err := msg.Validate(); err != nil {
		return msg, err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Type == "" {
		msg.Type = notifications.TypeInfo
	}
	return msg, nil
}

func seg(s string) string {
	return url.PathEscape(s)
}

// do performs a single JSON request. out may be nil; an empty 2xx body
// leaves out untouched.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	status := 0
	ctx, rid := requestid.Ensure(ctx)
	defer func() {
		if c.onRequest != nil {
			c.onRequest(RequestResult{
				Operation: op,
				Method:    method,
				Path:      path,
				RequestID: rid,
				Status:    status,
				Duration:  time.Since(start),
				Err:       err,
			})
		}
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: marshal request: %w", ErrInvalidArgument, err)
		}
		reader = bytes.NewReader(payload)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrInvalidArgument, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "notifykit-gateway/1.0")
	req.Header.Set(requestid.Header, rid)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.appKey != "" && c.appSecret != "" {
		req.Header.Set(headerAppKey, c.appKey)
		req.Header.Set(headerAppSecret, c.appSecret)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: %w: %w", ErrUnavailable, ErrTimeout, err)
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	// 64KB limit prevents memory exhaustion on error pages
	limit := int64(maxBodySize)
	if out != nil && resp.StatusCode < 300 {
		limit = 32 << 20
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorMessage(data)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		gwErr := &Error{Method: method, Path: path, Status: resp.StatusCode, Message: msg, RequestID: rid}
		c.logger.DebugContext(ctx, "gateway request failed",
			slog.String("op", op),
			logger.StatusCode(resp.StatusCode),
			logger.Error(gwErr),
		)
		return gwErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}
