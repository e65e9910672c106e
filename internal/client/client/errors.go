package client

import "github.com/dmitrijs2005/reposync/internal/common"

// ErrUnavailable matches errors caused by an unreachable daemon.
var ErrUnavailable = common.ErrorUnavailable
