package remote

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Repo is an entry of the remote repo list.
type Repo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Desc       string   `json:"desc"`
	Owner      string   `json:"owner"`
	Permission string   `json:"permission"`
	Encrypted  FlexBool `json:"encrypted"`
	Size       int64    `json:"size"`
	MTime      int64    `json:"mtime"`
}

// DownloadInfo is the server-side metadata needed to clone a repo.
type DownloadInfo struct {
	RepoID      string   `json:"repo_id"`
	RepoName    string   `json:"repo_name"`
	RepoVersion int      `json:"repo_version"`
	Token       string   `json:"token"`
	Email       string   `json:"email"`
	Encrypted   FlexBool `json:"encrypted"`
	EncVersion  int      `json:"enc_version"`
	Magic       string   `json:"magic"`
	RandomKey   string   `json:"random_key"`
	Salt        string   `json:"salt"`
	Permission  string   `json:"permission"`
	// Set by servers that keep a password hash in place of magic.
	PwdHashAlgo   string `json:"pwd_hash_algo"`
	PwdHashParams string `json:"pwd_hash_params"`
}

// ReadOnly reports whether the account may only read the repo.
func (d *DownloadInfo) ReadOnly() bool {
	return d.Permission == "r"
}

type CreateRepoRequest struct {
	Name   string
	Desc   string
	Passwd string
}

// FlexBool decodes the loose booleans the server emits: true/false,
// 0/1, "" and quoted forms of those.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	switch s {
	case "", "0", "false", "False":
		*b = false
		return nil
	case "1", "true", "True":
		*b = true
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		*b = n != 0
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b = FlexBool(v)
	return nil
}
