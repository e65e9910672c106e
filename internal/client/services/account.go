package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/reposync/internal/client/client"
	"github.com/dmitrijs2005/reposync/internal/client/remote"
	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// Account is what the user told us about the remote account. Empty
// fields are filled from the daemon config or by prompting.
type Account struct {
	ServerURL string
	Username  string
	Password  string
	Token     string
	OTP       string
}

// Device describes this installation to the auth endpoint.
type Device struct {
	ID              string
	Name            string
	Platform        string
	PlatformVersion string
	ClientVersion   string
}

// AccountService resolves the account and obtains an auth token.
//
// Contract:
//   - Resolve: fill ServerURL and Username from the stored config or the prompter.
//   - Token: return an explicit token, a cached still-valid token for the same
//     server and user, or a fresh one from the server (prompting for the
//     password and a two-factor code when needed). Fresh tokens are cached
//     in the daemon config.
type AccountService interface {
	Resolve(ctx context.Context, a Account) (Account, error)
	Token(ctx context.Context, a Account) (string, error)
}

type accountService struct {
	daemon  client.Client
	remotes RemoteFactory
	prompt  Prompter
	device  Device
	clock   clockwork.Clock
	logger  logging.Logger
}

func NewAccountService(daemon client.Client, remotes RemoteFactory, prompt Prompter, device Device,
	clock clockwork.Clock, logger logging.Logger) AccountService {
	return &accountService{daemon: daemon, remotes: remotes, prompt: prompt, device: device, clock: clock,
		logger: logger.With("module", "account")}
}

func (s *accountService) Resolve(ctx context.Context, a Account) (Account, error) {
	var err error
	if a.ServerURL, err = s.fill(ctx, a.ServerURL, common.ServerURLConfigKey, "server URL"); err != nil {
		return a, err
	}
	a.ServerURL = strings.TrimRight(a.ServerURL, "/")
	if a.Username, err = s.fill(ctx, a.Username, common.UsernameConfigKey, "username"); err != nil {
		return a, err
	}
	return a, nil
}

func (s *accountService) fill(ctx context.Context, v, key, what string) (string, error) {
	if v != "" {
		return v, nil
	}
	stored, err := s.daemon.GetConfig(ctx, key)
	switch {
	case err == nil && stored != "":
		return stored, nil
	case err != nil && !errors.Is(err, common.ErrorNotFound):
		return "", err
	}
	v, err = s.prompt.Text("Enter " + what)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", common.ErrorValidation, what)
	}
	return v, nil
}

func (s *accountService) Token(ctx context.Context, a Account) (string, error) {
	if a.Token != "" {
		return a.Token, nil
	}

	if tok, ok := s.cachedToken(ctx, a); ok {
		return tok, nil
	}

	passwd := a.Password
	if passwd == "" {
		var err error
		if passwd, err = s.prompt.Password(fmt.Sprintf("Enter password for user %s: ", a.Username)); err != nil {
			return "", err
		}
	}

	r, err := s.remotes(a.ServerURL)
	if err != nil {
		return "", err
	}
	ar := remote.AuthRequest{
		Username:        a.Username,
		Password:        passwd,
		Platform:        s.device.Platform,
		DeviceID:        s.device.ID,
		DeviceName:      s.device.Name,
		ClientVersion:   s.device.ClientVersion,
		PlatformVersion: s.device.PlatformVersion,
	}

	tok, err := r.AuthToken(ctx, ar, a.OTP)
	if errors.Is(err, remote.ErrOTPRequired) && a.OTP == "" {
		otp, perr := s.prompt.Text("Enter two-factor authentication code")
		if perr != nil {
			return "", perr
		}
		tok, err = r.AuthToken(ctx, ar, otp)
	}
	if err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}

	s.cacheToken(ctx, a, tok)
	return tok, nil
}

func (s *accountService) cachedToken(ctx context.Context, a Account) (string, bool) {
	get := func(key string) string {
		v, err := s.daemon.GetConfig(ctx, key)
		if err != nil {
			return ""
		}
		return v
	}
	tok := get(common.TokenConfigKey)
	if tok == "" || get(common.ServerURLConfigKey) != a.ServerURL || get(common.UsernameConfigKey) != a.Username {
		return "", false
	}
	return tok, tokenUsable(tok, s.clock)
}

func (s *accountService) cacheToken(ctx context.Context, a Account, tok string) {
	for _, kv := range [][2]string{
		{common.ServerURLConfigKey, a.ServerURL},
		{common.UsernameConfigKey, a.Username},
		{common.TokenConfigKey, tok},
	} {
		if err := s.daemon.SetConfig(ctx, kv[0], kv[1]); err != nil {
			s.logger.Warn(ctx, "cannot cache account", "key", kv[0], "error", err)
			return
		}
	}
}

// tokenUsable reports whether tok may be reused. Opaque tokens never
// expire client-side; JWTs are checked against their exp claim without
// verifying the signature.
func tokenUsable(tok string, clock clockwork.Clock) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return clock.Now().Before(exp.Time)
}
