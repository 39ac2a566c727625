// Package api implements the HTTP client for the remote Story API.
//
// Every failure is classified at this boundary: errors from the transport
// itself wrap common.ErrUnavailable, while responses the server answered
// with error=true become *ServerError carrying the server's message
// verbatim. Callers branch on the two with errors.Is / errors.As.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrijs2005/storyshare/internal/common"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Story is the server's representation of a story in list responses.
type Story struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photoUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	Lat         *float64  `json:"lat"`
	Lon         *float64  `json:"lon"`
}

// StoryPayload is a new-story submission: multipart description + photo,
// with optional coordinates.
type StoryPayload struct {
	Description string
	Photo       []byte
	PhotoName   string
	Lat         *float64
	Lon         *float64
}

type LoginResult struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// PushSubscription is the envelope sent to the push-subscription endpoint.
type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

type envelope struct {
	Error       bool            `json:"error"`
	Message     string          `json:"message"`
	LoginResult *LoginResult    `json:"loginResult"`
	ListStory   json.RawMessage `json:"listStory"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	_, err := c.postJSON(ctx, "/register", "", body)
	return err
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	env, err := c.postJSON(ctx, "/login", "", body)
	if err != nil {
		return nil, err
	}
	if env.LoginResult == nil {
		return nil, fmt.Errorf("login response missing loginResult: %w", common.ErrUnavailable)
	}
	return env.LoginResult, nil
}

// ListParams selects a page of stories. Location=1 asks the server for
// stories that carry coordinates only.
type ListParams struct {
	Page     int
	Size     int
	Location int
}

func (c *Client) ListStories(ctx context.Context, token string, p ListParams) ([]Story, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Size == 0 {
		p.Size = 10
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("size", strconv.Itoa(p.Size))
	q.Set("location", strconv.Itoa(p.Location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stories?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	setAuth(req, token)

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var list []Story
	if len(env.ListStory) > 0 {
		if err := json.Unmarshal(env.ListStory, &list); err != nil {
			return nil, fmt.Errorf("failed to decode story list: %w", err)
		}
	}
	return list, nil
}

// CreateStory submits an authenticated story.
func (c *Client) CreateStory(ctx context.Context, token string, p StoryPayload) error {
	return c.postMultipart(ctx, "/stories", token, p)
}

// CreateStoryGuest submits a story through the unauthenticated guest endpoint.
func (c *Client) CreateStoryGuest(ctx context.Context, p StoryPayload) error {
	return c.postMultipart(ctx, "/stories/guest", "", p)
}

func (c *Client) SubscribeNotifications(ctx context.Context, token string, sub PushSubscription) error {
	_, err := c.postJSON(ctx, "/notifications/subscribe", token, sub)
	return err
}

func (c *Client) UnsubscribeNotifications(ctx context.Context, token string, endpoint string) error {
	body, err := json.Marshal(map[string]string{"endpoint": endpoint})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/notifications/subscribe", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	setAuth(req, token)

	_, err = c.do(req)
	return err
}

// Ping probes server reachability for the online watcher. Any HTTP response
// counts as reachable; only a transport failure reports offline.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func setAuth(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) postJSON(ctx context.Context, path, token string, body any) (*envelope, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	setAuth(req, token)

	return c.do(req)
}

func (c *Client) postMultipart(ctx context.Context, path, token string, p StoryPayload) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("description", p.Description); err != nil {
		return err
	}
	if p.Lat != nil && p.Lon != nil {
		if err := w.WriteField("lat", strconv.FormatFloat(*p.Lat, 'f', -1, 64)); err != nil {
			return err
		}
		if err := w.WriteField("lon", strconv.FormatFloat(*p.Lon, 'f', -1, 64)); err != nil {
			return err
		}
	}

	name := p.PhotoName
	if name == "" {
		name = "photo.jpg"
	}
	fw, err := w.CreateFormFile("photo", name)
	if err != nil {
		return err
	}
	if _, err := fw.Write(p.Photo); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	setAuth(req, token)

	_, err = c.do(req)
	return err
}

// do executes the request and classifies the outcome. The body is always an
// API envelope; error=true becomes a *ServerError regardless of HTTP status.
func (c *Client) do(req *http.Request) (*envelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unexpected response from server: %w", common.ErrUnavailable)
	}

	if env.Error {
		return nil, &ServerError{Message: env.Message, StatusCode: resp.StatusCode}
	}
	return &env, nil
}
