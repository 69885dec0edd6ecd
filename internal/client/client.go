// Package client talks to a lanes server over its JSON API and board change feed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lanes-cli/internal/model"
)

// ActorHeader must match the header the server reads the acting user from.
const ActorHeader = "X-Lanes-Actor"

const requestTimeout = 30 * time.Second

// StatusError is a non-2xx reply from the server.
type StatusError struct {
	Code    int
	Message string
}

func (e StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// Client wraps http.Client with helpers for the lanes JSON API.
type Client struct {
	BaseURL string
	ActorID string
	HTTP    *http.Client
}

func New(baseURL, actorID string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		ActorID: strings.TrimSpace(actorID),
		HTTP:    &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return err
		}
		rd = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.ActorID != "" {
		req.Header.Set(ActorHeader, c.ActorID)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er model.ErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if json.Unmarshal(raw, &er) != nil || er.Message == "" {
			er.Message = strings.TrimSpace(string(raw))
		}
		return StatusError{Code: resp.StatusCode, Message: er.Message}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Boards(ctx context.Context) ([]model.Board, error) {
	var out []model.Board
	err := c.do(ctx, http.MethodGet, "/boards", nil, &out)
	return out, err
}

func (c *Client) Board(ctx context.Context, boardID string) (model.BoardSnapshot, error) {
	var out model.BoardSnapshot
	err := c.do(ctx, http.MethodGet, "/boards/"+url.PathEscape(boardID), nil, &out)
	return out, err
}

func (c *Client) Inbox(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	err := c.do(ctx, http.MethodGet, "/inbox", nil, &out)
	return out, err
}

func (c *Client) CreateBoard(ctx context.Context, name string) (model.Board, error) {
	var out model.Board
	err := c.do(ctx, http.MethodPost, "/boards/create", model.CreateBoardRequest{Name: name}, &out)
	return out, err
}

func (c *Client) CreateColumn(ctx context.Context, boardID, name string) (model.Column, error) {
	var out model.Column
	err := c.do(ctx, http.MethodPost, "/columns/create", model.CreateColumnRequest{BoardID: boardID, Name: name}, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, req model.CreateTaskRequest) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPost, "/tasks/create", req, &out)
	return out, err
}

func (c *Client) RenameBoard(ctx context.Context, boardID, name string) (model.Board, error) {
	var out model.Board
	err := c.do(ctx, http.MethodPut, "/boards/"+url.PathEscape(boardID), model.RenameRequest{Name: name}, &out)
	return out, err
}

func (c *Client) RenameColumn(ctx context.Context, columnID, name string) (model.Column, error) {
	var out model.Column
	err := c.do(ctx, http.MethodPut, "/columns/"+url.PathEscape(columnID), model.RenameRequest{Name: name}, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, taskID string, req model.UpdateTaskRequest) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(taskID), req, &out)
	return out, err
}

func (c *Client) SwitchTask(ctx context.Context, taskID string, req model.SwitchTaskRequest) (model.SwitchResponse, error) {
	var out model.SwitchResponse
	err := c.do(ctx, http.MethodPut, "/tasks/switch-position/"+url.PathEscape(taskID), req, &out)
	return out, err
}

func (c *Client) SwitchColumn(ctx context.Context, columnID string, req model.SwitchColumnRequest) (model.SwitchResponse, error) {
	var out model.SwitchResponse
	err := c.do(ctx, http.MethodPut, "/columns/switch-position/"+url.PathEscape(columnID), req, &out)
	return out, err
}

func (c *Client) DeleteBoard(ctx context.Context, boardID string) error {
	return c.do(ctx, http.MethodDelete, "/boards/"+url.PathEscape(boardID), nil, nil)
}

func (c *Client) DeleteColumn(ctx context.Context, columnID string) (model.Column, error) {
	var out model.Column
	err := c.do(ctx, http.MethodDelete, "/columns/"+url.PathEscape(columnID), nil, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, taskID string) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(taskID), nil, &out)
	return out, err
}

// Rebalance renumbers a container on the server and reports how many items moved.
func (c *Client) Rebalance(ctx context.Context, ref model.ContainerRef) (int, error) {
	var path string
	switch ref.Kind {
	case model.ContainerBoard:
		path = "/boards/" + url.PathEscape(ref.ID) + "/rebalance"
	case model.ContainerColumn:
		path = "/columns/" + url.PathEscape(ref.ID) + "/rebalance"
	case model.ContainerInbox:
		path = "/inbox/rebalance"
	default:
		return 0, fmt.Errorf("unknown container kind %q", ref.Kind)
	}
	var out model.RebalanceResponse
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

func (c *Client) Events(ctx context.Context, entityID string, limit int) ([]model.Event, error) {
	q := url.Values{}
	if entityID != "" {
		q.Set("entity", entityID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []model.Event
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}
