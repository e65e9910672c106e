package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/reposync/internal/client/remote"
)

// Remote is the part of the server HTTP API the workflows use.
type Remote interface {
	ServerURL() string
	AuthToken(ctx context.Context, ar remote.AuthRequest, otp string) (string, error)
	ListRepos(ctx context.Context, token string) ([]remote.Repo, error)
	DownloadInfo(ctx context.Context, token, repoID string) (*remote.DownloadInfo, error)
	CreateRepo(ctx context.Context, token string, cr remote.CreateRepoRequest) (string, error)
}

// RemoteFactory returns a Remote for serverURL.
type RemoteFactory func(serverURL string) (Remote, error)

// HTTPRemotes builds remote.Client values with the given timeout.
func HTTPRemotes(timeout time.Duration) RemoteFactory {
	return func(serverURL string) (Remote, error) {
		return remote.New(serverURL, timeout)
	}
}

// Prompter asks the user for missing input.
type Prompter interface {
	Text(prompt string) (string, error)
	// Password reads without echo.
	Password(prompt string) (string, error)
}
