package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/reposync/internal/client/client"
	"github.com/dmitrijs2005/reposync/internal/proto"
	"github.com/dmitrijs2005/reposync/internal/taskstate"
	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
)

// StatusLine is one row of status output.
type StatusLine struct {
	Name   string
	State  string
	Detail string
}

// Labels shown for transfers that have not reported totals yet.
const (
	labelFetchFS   = "downloading files list"
	labelFetchData = "downloading"
)

// StatusService reads task state from the daemon. It never changes it.
type StatusService interface {
	Report(ctx context.Context) ([]StatusLine, error)
	// Watch calls fn with a fresh report at most once per interval until
	// ctx is done or fn returns an error.
	Watch(ctx context.Context, interval time.Duration, fn func([]StatusLine) error) error
}

type statusService struct {
	daemon client.Client
}

func NewStatusService(daemon client.Client) StatusService {
	return &statusService{daemon: daemon}
}

func (s *statusService) Report(ctx context.Context) ([]StatusLine, error) {
	tasks, err := s.daemon.GetCloneTasks(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]StatusLine, 0, len(tasks))
	cloning := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.State == string(taskstate.CloneDone) {
			continue
		}
		cloning[t.RepoID] = true
		line, err := s.cloneLine(ctx, t)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	repos, err := s.daemon.GetRepoList(ctx, -1, -1)
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return lines, nil
	}
	autoSync, err := s.daemon.IsAutoSyncEnabled(ctx)
	if err != nil {
		return nil, err
	}

	for _, r := range repos {
		// Reported above while its clone task is still visible.
		if cloning[r.ID] {
			continue
		}
		line, err := s.repoLine(ctx, r, autoSync)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *statusService) cloneLine(ctx context.Context, t *proto.Task) (StatusLine, error) {
	line := StatusLine{Name: t.RepoName, State: t.State}
	switch taskstate.CloneState(t.State) {
	case taskstate.CloneFetch:
		tx, err := s.daemon.FindTransferTask(ctx, t.RepoID)
		if err != nil {
			return line, err
		}
		if tx != nil {
			line.State, line.Detail = downloadProgress(tx)
		}
	case taskstate.CloneError:
		msg, err := s.daemon.SyncErrorIDToStr(ctx, int(t.Error))
		if err != nil {
			return line, err
		}
		line.Detail = msg
	}
	return line, nil
}

func (s *statusService) repoLine(ctx context.Context, r *proto.Repo, autoSync bool) (StatusLine, error) {
	line := StatusLine{Name: r.Name}
	if !autoSync || !r.AutoSync {
		line.State = taskstate.LabelAutoSyncDisabled
		return line, nil
	}

	st, err := s.daemon.GetRepoSyncTask(ctx, r.ID)
	if err != nil {
		return line, err
	}
	if st == nil {
		line.State = taskstate.LabelWaitingForSync
		return line, nil
	}

	line.State = st.State
	switch taskstate.SyncState(st.State) {
	case taskstate.SyncUploading, taskstate.SyncDownloading:
		tx, err := s.daemon.FindTransferTask(ctx, r.ID)
		if err != nil {
			return line, err
		}
		if tx == nil {
			break
		}
		if st.State == string(taskstate.SyncDownloading) {
			_, line.Detail = downloadProgress(tx)
		} else {
			line.Detail = withRate(taskstate.FormatProgress(tx.BlockDone, tx.BlockTotal), tx.Rate)
		}
	case taskstate.SyncError:
		msg, err := s.daemon.SyncErrorIDToStr(ctx, int(st.Error))
		if err != nil {
			return line, err
		}
		line.Detail = msg
	}
	return line, nil
}

// downloadProgress renders a download transfer: file-list progress in the
// fs phase, block progress and rate in the data phase.
func downloadProgress(tx *proto.TransferTask) (state, detail string) {
	if taskstate.RuntimeState(tx.RTState) == taskstate.RuntimeFS {
		return labelFetchFS, taskstate.FormatProgress(tx.FSObjectsDone, tx.FSObjectsTotal)
	}
	return labelFetchData, withRate(taskstate.FormatProgress(tx.BlockDone, tx.BlockTotal), tx.Rate)
}

func withRate(progress string, bps int64) string {
	if bps <= 0 {
		return progress
	}
	return fmt.Sprintf("%s, %s/s", progress, humanize.Bytes(uint64(bps)))
}

func (s *statusService) Watch(ctx context.Context, interval time.Duration, fn func([]StatusLine) error) error {
	lim := rate.NewLimiter(rate.Every(interval), 1)
	for {
		if err := lim.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		lines, err := s.Report(ctx)
		if err != nil {
			return err
		}
		if err := fn(lines); err != nil {
			return err
		}
	}
}
