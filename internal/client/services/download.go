package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/reposync/internal/client/client"
	"github.com/dmitrijs2005/reposync/internal/client/remote"
	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/logging"
	"github.com/dmitrijs2005/reposync/internal/proto"
)

var ErrNoSuchLibrary = errors.New("no such library")

// FetchRequest names a remote repo and where to put it. LibPasswd is the
// repo passphrase; nil means prompt when the repo is encrypted.
type FetchRequest struct {
	Account   Account
	RepoID    string
	Dir       string
	LibPasswd *string
}

// DownloadService acquires remote repos through the daemon.
//
// Contract:
//   - Download: fetch download info and ask the daemon to create a new
//     folder for the repo under Dir.
//   - DownloadByName: same, looking the repo up by its name first.
//   - Sync: bind the repo to the existing folder Dir.
//   - Desync: stop syncing the repo whose worktree is path.
//   - Create: create a repo on the server and return its id.
//
// Daemon errors are returned as is, without retry.
type DownloadService interface {
	Download(ctx context.Context, req FetchRequest) (string, error)
	DownloadByName(ctx context.Context, req FetchRequest, name string) (string, error)
	Sync(ctx context.Context, req FetchRequest) (string, error)
	Desync(ctx context.Context, path string) (*proto.Repo, error)
	Create(ctx context.Context, a Account, cr remote.CreateRepoRequest) (string, error)
}

type downloadService struct {
	daemon   client.Client
	accounts AccountService
	remotes  RemoteFactory
	prompt   Prompter
	logger   logging.Logger
}

func NewDownloadService(daemon client.Client, accounts AccountService, remotes RemoteFactory, prompt Prompter,
	logger logging.Logger) DownloadService {
	return &downloadService{daemon: daemon, accounts: accounts, remotes: remotes, prompt: prompt,
		logger: logger.With("module", "download")}
}

// session resolves the account and returns a token and remote for it.
func (s *downloadService) session(ctx context.Context, a Account) (Account, string, Remote, error) {
	a, err := s.accounts.Resolve(ctx, a)
	if err != nil {
		return a, "", nil, err
	}
	tok, err := s.accounts.Token(ctx, a)
	if err != nil {
		return a, "", nil, err
	}
	r, err := s.remotes(a.ServerURL)
	if err != nil {
		return a, "", nil, err
	}
	return a, tok, r, nil
}

func (s *downloadService) source(ctx context.Context, req FetchRequest) (proto.RepoSource, error) {
	if req.RepoID == "" {
		return proto.RepoSource{}, fmt.Errorf("%w: library id is required", common.ErrorValidation)
	}
	_, tok, r, err := s.session(ctx, req.Account)
	if err != nil {
		return proto.RepoSource{}, err
	}
	info, err := r.DownloadInfo(ctx, tok, req.RepoID)
	if err != nil {
		return proto.RepoSource{}, err
	}

	var passwd *string
	if info.Encrypted {
		passwd = req.LibPasswd
		if passwd == nil {
			p, err := s.prompt.Password(fmt.Sprintf("Enter password for the library %s: ", info.RepoName))
			if err != nil {
				return proto.RepoSource{}, err
			}
			passwd = &p
		}
	}
	return BuildSource(r.ServerURL(), info, passwd)
}

// BuildSource assembles the request fields shared by clone and download.
// Encryption fields are set only for encrypted repos.
func BuildSource(serverURL string, info *remote.DownloadInfo, passwd *string) (proto.RepoSource, error) {
	src := proto.RepoSource{
		RepoID:      info.RepoID,
		RepoVersion: int32(info.RepoVersion),
		RepoName:    info.RepoName,
		Token:       info.Token,
		Email:       info.Email,
	}
	mi := proto.MoreInfo{ServerURL: serverURL, IsReadonly: info.ReadOnly()}

	if info.Encrypted {
		if passwd == nil {
			return src, fmt.Errorf("%w: library password is required", common.ErrorValidation)
		}
		pw, magic := *passwd, info.Magic
		ev := int32(info.EncVersion)
		src.Passwd, src.Magic, src.EncVersion = &pw, &magic, &ev
		if info.RandomKey != "" {
			rk := info.RandomKey
			src.RandomKey = &rk
		}
		mi.RepoSalt = info.Salt
		mi.PwdHashAlgo, mi.PwdHashParams = info.PwdHashAlgo, info.PwdHashParams
	}

	encoded, err := mi.Encode()
	if err != nil {
		return src, err
	}
	src.MoreInfo = encoded
	return src, nil
}

func (s *downloadService) Download(ctx context.Context, req FetchRequest) (string, error) {
	dir, err := absDir(req.Dir)
	if err != nil {
		return "", err
	}
	src, err := s.source(ctx, req)
	if err != nil {
		return "", err
	}
	return s.daemon.DownloadRepo(ctx, &proto.DownloadRequest{RepoSource: src, WtParent: dir})
}

func (s *downloadService) DownloadByName(ctx context.Context, req FetchRequest, name string) (string, error) {
	a, tok, r, err := s.session(ctx, req.Account)
	if err != nil {
		return "", err
	}
	repos, err := r.ListRepos(ctx, tok)
	if err != nil {
		return "", err
	}

	var matches []remote.Repo
	for _, repo := range repos {
		if repo.Name == name {
			matches = append(matches, repo)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrNoSuchLibrary, name)
	case 1:
	default:
		return "", fmt.Errorf("%w: %d libraries are named %q, use download with an id", common.ErrorValidation, len(matches), name)
	}

	req.Account = a
	req.Account.Token = tok
	req.RepoID = matches[0].ID
	return s.Download(ctx, req)
}

func (s *downloadService) Sync(ctx context.Context, req FetchRequest) (string, error) {
	dir, err := absDir(req.Dir)
	if err != nil {
		return "", err
	}
	src, err := s.source(ctx, req)
	if err != nil {
		return "", err
	}
	return s.daemon.CloneRepo(ctx, &proto.CloneRequest{RepoSource: src, Worktree: dir})
}

func (s *downloadService) Desync(ctx context.Context, path string) (*proto.Repo, error) {
	dir, err := absDir(path)
	if err != nil {
		return nil, err
	}
	repos, err := s.daemon.GetRepoList(ctx, -1, -1)
	if err != nil {
		return nil, err
	}
	for _, r := range repos {
		if filepath.Clean(r.Worktree) == dir {
			if err := s.daemon.DestroyRepo(ctx, r.ID); err != nil {
				return nil, err
			}
			return r, nil
		}
	}

	// A clone that never finished is not listed but still owns the folder.
	tasks, err := s.daemon.GetCloneTasks(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if filepath.Clean(t.Worktree) == dir {
			if err := s.daemon.DestroyRepo(ctx, t.RepoID); err != nil {
				return nil, err
			}
			return &proto.Repo{ID: t.RepoID, Name: t.RepoName, Worktree: t.Worktree}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s is not a synced folder", ErrNoSuchLibrary, dir)
}

func (s *downloadService) Create(ctx context.Context, a Account, cr remote.CreateRepoRequest) (string, error) {
	if cr.Name == "" {
		return "", fmt.Errorf("%w: library name is required", common.ErrorValidation)
	}
	_, tok, r, err := s.session(ctx, a)
	if err != nil {
		return "", err
	}
	return r.CreateRepo(ctx, tok, cr)
}

func absDir(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: directory is required", common.ErrorValidation)
	}
	return filepath.Abs(p)
}
