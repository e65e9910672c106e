package proto

import (
	"fmt"

	"github.com/dmitrijs2005/reposync/internal/common"
)

// Encrypted reports whether any of the encryption fields is present.
func (s *RepoSource) Encrypted() bool {
	return s.Magic != nil || s.RandomKey != nil || s.EncVersion != nil
}

// Validate checks the request invariants that do not need daemon state:
// required identifiers and the all-or-none rule of the encryption fields.
// It returns the decoded MoreInfo on success.
func (s *RepoSource) Validate() (MoreInfo, error) {
	switch {
	case s.RepoID == "":
		return MoreInfo{}, invalid("repo_id is required")
	case s.RepoName == "":
		return MoreInfo{}, invalid("repo_name is required")
	case s.Token == "":
		return MoreInfo{}, invalid("token is required")
	}

	info, err := ParseMoreInfo(s.MoreInfo)
	if err != nil {
		return MoreInfo{}, err
	}

	if !s.Encrypted() {
		if s.Passwd != nil {
			return MoreInfo{}, invalid("passwd given for an unencrypted repo")
		}
		return info, nil
	}

	if s.EncVersion == nil {
		return MoreInfo{}, invalid("enc_version is required for an encrypted repo")
	}
	v := *s.EncVersion
	if v < 1 || v > 4 {
		return MoreInfo{}, invalid(fmt.Sprintf("unsupported enc_version %d", v))
	}
	if s.Magic == nil || *s.Magic == "" {
		return MoreInfo{}, invalid("magic is required for an encrypted repo")
	}
	if v >= 2 && (s.RandomKey == nil || *s.RandomKey == "") {
		return MoreInfo{}, invalid(fmt.Sprintf("random_key is required for enc_version %d", v))
	}
	if v >= 3 && info.RepoSalt == "" {
		return MoreInfo{}, invalid(fmt.Sprintf("repo_salt is required for enc_version %d", v))
	}
	if s.Passwd == nil {
		return MoreInfo{}, invalid("passwd is required for an encrypted repo")
	}
	return info, nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}
