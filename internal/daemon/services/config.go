package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/daemon/repositories/repomanager"
	"github.com/dmitrijs2005/reposync/internal/logging"
)

const maxConfigKeyLen = 255

// ConfigService stores free-form config entries. Keys are checked for
// shape only; the auto-sync key must hold a boolean.
type ConfigService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewConfigService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ConfigService {
	return &ConfigService{db: db, repomanager: m, logger: logger.With("module", "config")}
}

func (s *ConfigService) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if key == common.AutoSyncConfigKey {
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%w: %s must be true or false", common.ErrorValidation, key)
		}
	}
	if err := s.repomanager.Settings(s.db).Set(ctx, key, value); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	s.logger.Debug(ctx, "config set", "key", key)
	return nil
}

// Get returns common.ErrorNotFound for keys never set.
func (s *ConfigService) Get(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return s.repomanager.Settings(s.db).Get(ctx, key)
}

// AutoSyncEnabled reports the global auto-sync switch. It defaults to on.
func (s *ConfigService) AutoSyncEnabled(ctx context.Context) (bool, error) {
	v, err := s.repomanager.Settings(s.db).Get(ctx, common.AutoSyncConfigKey)
	if errors.Is(err, common.ErrorNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		s.logger.Warn(ctx, "bad auto sync value, assuming enabled", "value", v)
		return true, nil
	}
	return enabled, nil
}

func (s *ConfigService) SetAutoSync(ctx context.Context, enabled bool) error {
	return s.Set(ctx, common.AutoSyncConfigKey, strconv.FormatBool(enabled))
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", common.ErrorInvalidConfigKey)
	}
	if len(key) > maxConfigKeyLen {
		return fmt.Errorf("%w: key longer than %d bytes", common.ErrorInvalidConfigKey, maxConfigKeyLen)
	}
	for _, r := range key {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains whitespace or control characters", common.ErrorInvalidConfigKey, key)
		}
	}
	return nil
}
