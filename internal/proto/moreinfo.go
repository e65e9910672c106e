package proto

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/reposync/internal/common"
)

// MoreInfoVersion is the version written by this client.
const MoreInfoVersion = 1

// MoreInfo is the structured extension carried in RepoSource.MoreInfo.
//
// It travels as a JSON string so that daemons which only know the legacy
// unversioned blob ({"server_url": ..., "repo_salt": ..., "is_readonly": ...})
// keep reading it. Unknown fields are ignored; a missing version means 0.
type MoreInfo struct {
	Version    int    `json:"version,omitempty"`
	ServerURL  string `json:"server_url"`
	RepoSalt   string `json:"repo_salt,omitempty"`
	IsReadonly bool   `json:"is_readonly"`
	// PwdHashAlgo/PwdHashParams are set by servers that store a password
	// hash ("pbkdf2_sha256", "argon2id") in place of the legacy magic.
	PwdHashAlgo   string `json:"pwd_hash_algo,omitempty"`
	PwdHashParams string `json:"pwd_hash_params,omitempty"`
}

// Encode returns the JSON form stamped with MoreInfoVersion.
func (m MoreInfo) Encode() (string, error) {
	m.Version = MoreInfoVersion
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseMoreInfo decodes s. An empty string yields the zero MoreInfo.
func ParseMoreInfo(s string) (MoreInfo, error) {
	var m MoreInfo
	if s == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return m, fmt.Errorf("%w: more_info: %v", common.ErrorValidation, err)
	}
	return m, nil
}
