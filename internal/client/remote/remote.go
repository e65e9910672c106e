// Package remote talks to the sync server's HTTP API: authentication,
// repo discovery, download info and repo creation.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/reposync/internal/netx"
)

// OTPHeader carries the one-time password. The server sets it to
// "required" when the account has two-factor authentication.
const OTPHeader = "X-Seafile-OTP"

var (
	ErrOTPRequired  = errors.New("two-factor authentication code required")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found on server")
)

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// New returns a client for the server at serverURL.
func New(serverURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: want http(s)://host", serverURL)
	}
	return &Client{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

// ServerURL is the normalized server URL, without trailing slash.
func (c *Client) ServerURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + "/api2/" + path
}

func (c *Client) do(ctx context.Context, method, path, token string, form url.Values, header http.Header, v any) error {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return err
	}
	for k, vs := range header {
		for _, hv := range vs {
			req.Header.Add(k, hv)
		}
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	req.Header.Set("Accept", "application/json; indent=4")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	return mapStatus(netx.DecodeJSON(resp, v))
}

func mapStatus(err error) error {
	var se *netx.StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch {
	case strings.EqualFold(se.Header.Get(OTPHeader), "required"):
		return ErrOTPRequired
	case se.StatusCode == http.StatusUnauthorized, se.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case se.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// AuthRequest is the device and account description sent when asking
// for an auth token.
type AuthRequest struct {
	Username        string
	Password        string
	Platform        string
	DeviceID        string
	DeviceName      string
	ClientVersion   string
	PlatformVersion string
}

// AuthToken exchanges credentials for an auth token. otp is sent only
// when non-empty; ErrOTPRequired means the call must be repeated with one.
func (c *Client) AuthToken(ctx context.Context, ar AuthRequest, otp string) (string, error) {
	form := url.Values{
		"username":         {ar.Username},
		"password":         {ar.Password},
		"platform":         {ar.Platform},
		"device_id":        {ar.DeviceID},
		"device_name":      {ar.DeviceName},
		"client_version":   {ar.ClientVersion},
		"platform_version": {ar.PlatformVersion},
	}
	header := http.Header{}
	if otp != "" {
		header.Set(OTPHeader, otp)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "auth-token/", "", form, header, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("server returned an empty token")
	}
	return out.Token, nil
}

func (c *Client) ListRepos(ctx context.Context, token string) ([]Repo, error) {
	var out []Repo
	if err := c.do(ctx, http.MethodGet, "repos/", token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DownloadInfo(ctx context.Context, token, repoID string) (*DownloadInfo, error) {
	var out DownloadInfo
	path := "repos/" + url.PathEscape(repoID) + "/download-info/"
	if err := c.do(ctx, http.MethodGet, path, token, nil, nil, &out); err != nil {
		return nil, err
	}
	if out.RepoID == "" {
		out.RepoID = repoID
	}
	return &out, nil
}

// CreateRepo creates a library on the server and returns its id. An empty
// passwd creates an unencrypted library.
func (c *Client) CreateRepo(ctx context.Context, token string, cr CreateRepoRequest) (string, error) {
	form := url.Values{"name": {cr.Name}, "desc": {cr.Desc}}
	if cr.Passwd != "" {
		form.Set("passwd", cr.Passwd)
	}
	var out struct {
		RepoID string `json:"repo_id"`
	}
	if err := c.do(ctx, http.MethodPost, "repos/", token, form, nil, &out); err != nil {
		return "", err
	}
	return out.RepoID, nil
}
