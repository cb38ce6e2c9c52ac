package lms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client asks the learning platform about existing enrollments.
type Client struct {
	http *resty.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		httpClient.SetAuthToken(cfg.Token)
	}

	return &Client{http: httpClient}
}

type enrollmentStatusResponse struct {
	Enrolled bool `json:"enrolled"`
}

// IsEnrolled calls GET /courses/{courseId}/enrollments?email=. A 404 means not enrolled.
func (c *Client) IsEnrolled(ctx context.Context, email, lmsCourseID string) (bool, error) {
	var result enrollmentStatusResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("courseId", lmsCourseID).
		SetQueryParam("email", email).
		SetResult(&result).
		Get("/courses/{courseId}/enrollments")
	if err != nil {
		return false, fmt.Errorf("lms enrollment request: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return false, nil
	case resp.IsError():
		return false, fmt.Errorf("lms enrollment check failed: status %d", resp.StatusCode())
	}

	return result.Enrolled, nil
}
