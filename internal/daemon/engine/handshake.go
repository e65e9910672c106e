package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/netx"
	"github.com/hashicorp/go-version"
)

const protocolVersionPath = "/seafhttp/protocol-version"

type protocolVersionResponse struct {
	Version int `json:"version"`
}

// handshake asks serverURL for its sync protocol version and checks it
// against minVersion. The transfer token is sent so the server can reject it.
func handshake(ctx context.Context, client *http.Client, serverURL, token string, minVersion *version.Version) error {
	url := strings.TrimRight(serverURL, "/") + protocolVersionPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorHandshake, err)
	}
	req.Header.Set(common.TransferTokenHeaderName, token)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorHandshake, err)
	}

	var body protocolVersionResponse
	if err := netx.DecodeJSON(resp, &body); err != nil {
		var se *netx.StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden) {
			return fmt.Errorf("%w: transfer token rejected", common.ErrorHandshake)
		}
		return fmt.Errorf("%w: %v", common.ErrorHandshake, err)
	}

	got, err := version.NewVersion(fmt.Sprint(body.Version))
	if err != nil {
		return fmt.Errorf("%w: bad protocol version %d", common.ErrorHandshake, body.Version)
	}
	if got.LessThan(minVersion) {
		return fmt.Errorf("%w: server protocol %s is older than %s", common.ErrorHandshake, got, minVersion)
	}
	return nil
}
