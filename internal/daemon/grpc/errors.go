package grpc

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/reposync/internal/common"
	"github.com/dmitrijs2005/reposync/internal/logging"
	"github.com/dmitrijs2005/reposync/internal/taskstate"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain tags the ErrorInfo details produced by the daemon.
const ErrorDomain = "reposync"

var kindCodes = map[common.Kind]codes.Code{
	common.KindValidation: codes.InvalidArgument,
	common.KindConflict:   codes.AlreadyExists,
	common.KindNotFound:   codes.NotFound,
	common.KindTask:       codes.FailedPrecondition,
	common.KindTransport:  codes.Unavailable,
	common.KindInternal:   codes.Internal,
}

// toStatus maps a service error to a gRPC status whose ErrorInfo detail
// carries the error kind and the task error code.
func toStatus(ctx context.Context, l logging.Logger, err error) error {
	kind := common.KindOf(err)
	msg := err.Error()
	if kind == common.KindInternal {
		l.Error(ctx, "internal error", "error", err)
		msg = common.ErrorInternal.Error()
	}

	st := status.New(kindCodes[kind], msg)
	info := &errdetails.ErrorInfo{
		Reason:   string(kind),
		Domain:   ErrorDomain,
		Metadata: map[string]string{"code": strconv.Itoa(taskCode(err))},
	}
	if withInfo, derr := st.WithDetails(info); derr == nil {
		st = withInfo
	}
	return st.Err()
}

func taskCode(err error) int {
	var e *common.Error
	switch {
	case errors.As(err, &e):
		return e.Code
	case errors.Is(err, common.ErrorHandshake):
		return taskstate.ErrHandshake
	case errors.Is(err, common.ErrorIncorrectPassword):
		return taskstate.ErrIncorrectPassword
	}
	return 0
}
