package taskstate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avdeenkov/go-task-manager/internal/models"
)

// Client talks to the task manager REST API on behalf of one signed-in
// user. The user id is cached after signup or login and attached to every
// task request, the auth token rides along in the Authorization header
// when the server issued one.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userID     string
	token      string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

// SetAuth caches the identity returned by signup or login.
func (c *Client) SetAuth(userID, token string) {
	c.userID = userID
	c.token = token
}

func (c *Client) UserID() string {
	return c.userID
}

type authRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Token   string `json:"token"`
}

// Signup registers a new account and caches the returned identity.
func (c *Client) Signup(ctx context.Context, name, email, password string) error {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup", authRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return err
	}

	c.SetAuth(resp.UserID, resp.Token)
	return nil
}

// Login authenticates and caches the returned identity.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", authRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return err
	}

	c.SetAuth(resp.UserID, resp.Token)
	return nil
}

type taskPayload struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p taskPayload) toModel() models.Task {
	completed, _ := models.CompletedFromStatus(p.Status)
	return models.Task{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Completed:   completed,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type createTaskPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	UserID      string `json:"userId"`
}

type taskEnvelope struct {
	Message string      `json:"message"`
	Task    taskPayload `json:"task"`
}

// CreateTask persists a task on the server and returns the server's copy,
// including its assigned id and timestamp.
func (c *Client) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	var resp taskEnvelope
	err := c.do(ctx, http.MethodPost, "/tasks", createTaskPayload{
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		Status:      models.TaskStatus(task.Completed),
		UserID:      c.userID,
	}, &resp)
	if err != nil {
		return models.Task{}, err
	}
	return resp.Task.toModel(), nil
}

// Tasks fetches the signed-in user's tasks, newest first.
func (c *Client) Tasks(ctx context.Context) ([]models.Task, error) {
	var resp struct {
		Tasks []taskPayload `json:"tasks"`
	}
	err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(c.userID), nil, &resp)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(resp.Tasks))
	for _, payload := range resp.Tasks {
		tasks = append(tasks, payload.toModel())
	}
	return tasks, nil
}

type updateTaskPayload struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Status      *string `json:"status,omitempty"`
	UserID      string  `json:"userId"`
}

// UpdateTask pushes the task's current local fields to the server.
func (c *Client) UpdateTask(ctx context.Context, task models.Task) error {
	status := models.TaskStatus(task.Completed)
	return c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(task.ID), updateTaskPayload{
		Title:       &task.Title,
		Description: &task.Description,
		Category:    &task.Category,
		Status:      &status,
		UserID:      c.userID,
	}, nil)
}

// DeleteTask removes the task on the server.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	path := "/tasks/" + url.PathEscape(taskID) + "/" + url.PathEscape(c.userID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
