package grpc

import (
	"context"

	"github.com/dmitrijs2005/reposync/internal/daemon/models"
	"github.com/dmitrijs2005/reposync/internal/daemon/tasks"
	"github.com/dmitrijs2005/reposync/internal/proto"
	"github.com/dmitrijs2005/reposync/internal/taskstate"
)

func (s *Server) Ping(ctx context.Context, _ *proto.Empty) (*proto.Empty, error) {
	return &proto.Empty{}, nil
}

func (s *Server) SetConfig(ctx context.Context, req *proto.SetConfigRequest) (*proto.SetConfigResponse, error) {
	if err := s.config.Set(ctx, req.Key, req.Value); err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &proto.SetConfigResponse{Status: 0}, nil
}

func (s *Server) GetConfig(ctx context.Context, req *proto.GetConfigRequest) (*proto.GetConfigResponse, error) {
	v, err := s.config.Get(ctx, req.Key)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &proto.GetConfigResponse{Value: v}, nil
}

func (s *Server) CloneRepo(ctx context.Context, req *proto.CloneRequest) (*proto.RepoIDResponse, error) {
	id, err := s.repos.Clone(ctx, req)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &proto.RepoIDResponse{RepoID: id}, nil
}

func (s *Server) DownloadRepo(ctx context.Context, req *proto.DownloadRequest) (*proto.RepoIDResponse, error) {
	id, err := s.repos.Download(ctx, req)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &proto.RepoIDResponse{RepoID: id}, nil
}

func (s *Server) GetRepo(ctx context.Context, req *proto.RepoIDRequest) (*proto.Repo, error) {
	r, err := s.repos.Get(ctx, req.RepoID)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return toProtoRepo(r), nil
}

func (s *Server) DestroyRepo(ctx context.Context, req *proto.RepoIDRequest) (*proto.Empty, error) {
	if err := s.repos.Destroy(ctx, req.RepoID); err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &proto.Empty{}, nil
}

func (s *Server) GetRepoList(ctx context.Context, req *proto.GetRepoListRequest) (*proto.GetRepoListResponse, error) {
	list, err := s.repos.List(ctx, int(req.Start), int(req.Limit))
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	resp := &proto.GetRepoListResponse{Repos: make([]*proto.Repo, 0, len(list))}
	for _, r := range list {
		resp.Repos = append(resp.Repos, toProtoRepo(r))
	}
	return resp, nil
}

// Shutdown answers first; the daemon is stopped from another goroutine so
// the reply can be flushed before the listener goes away.
func (s *Server) Shutdown(ctx context.Context, _ *proto.Empty) (*proto.Empty, error) {
	s.logger.Info(ctx, "shutdown requested")
	if s.shutdown != nil {
		go s.shutdown()
	}
	return &proto.Empty{}, nil
}

func (s *Server) GetCloneTasks(ctx context.Context, _ *proto.Empty) (*proto.GetCloneTasksResponse, error) {
	list := s.repos.Tasks().CloneTasks()
	resp := &proto.GetCloneTasksResponse{Tasks: make([]*proto.Task, 0, len(list))}
	for _, t := range list {
		resp.Tasks = append(resp.Tasks, toProtoTask(t))
	}
	return resp, nil
}

func (s *Server) GetRepoSyncTask(ctx context.Context, req *proto.RepoIDRequest) (*proto.GetRepoSyncTaskResponse, error) {
	t, ok := s.repos.Tasks().SyncTask(req.RepoID)
	if !ok {
		return &proto.GetRepoSyncTaskResponse{}, nil
	}
	return &proto.GetRepoSyncTaskResponse{Task: &proto.SyncTask{
		RepoID: t.RepoID,
		State:  string(t.State),
		Error:  int32(t.Error),
	}}, nil
}

func (s *Server) FindTransferTask(ctx context.Context, req *proto.RepoIDRequest) (*proto.FindTransferTaskResponse, error) {
	t, ok := s.repos.Tasks().TransferTask(req.RepoID)
	if !ok {
		return &proto.FindTransferTaskResponse{}, nil
	}
	return &proto.FindTransferTaskResponse{Task: toProtoTransfer(t)}, nil
}

func (s *Server) SyncErrorIDToStr(ctx context.Context, req *proto.SyncErrorIDToStrRequest) (*proto.SyncErrorIDToStrResponse, error) {
	return &proto.SyncErrorIDToStrResponse{Message: taskstate.ErrorString(int(req.Code))}, nil
}

func (s *Server) IsAutoSyncEnabled(ctx context.Context, _ *proto.Empty) (*proto.AutoSyncResponse, error) {
	enabled, err := s.config.AutoSyncEnabled(ctx)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &proto.AutoSyncResponse{Enabled: enabled}, nil
}

func (s *Server) SetAutoSync(ctx context.Context, req *proto.SetAutoSyncRequest) (*proto.Empty, error) {
	if err := s.config.SetAutoSync(ctx, req.Enabled); err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &proto.Empty{}, nil
}

func (s *Server) SetRepoAutoSync(ctx context.Context, req *proto.SetRepoAutoSyncRequest) (*proto.Empty, error) {
	if err := s.repos.SetAutoSync(ctx, req.RepoID, req.Enabled); err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &proto.Empty{}, nil
}

// toProtoRepo copies the persisted record into a newly allocated wire Repo.
// Fields the wire form does not carry (encryption keys, email) stay behind.
func toProtoRepo(r *models.Repo) *proto.Repo {
	out := &proto.Repo{
		ID:              r.ID,
		Name:            r.Name,
		Desc:            r.Desc,
		Encrypted:       r.Encrypted,
		Worktree:        r.Worktree,
		AutoSync:        r.AutoSync,
		WorktreeInvalid: r.WorktreeInvalid,
		RelayID:         r.RelayID,
		Version:         int32(r.Version),
	}
	if !r.LastSyncTime.IsZero() {
		out.LastSyncTime = r.LastSyncTime.Unix()
	}
	return out
}

func toProtoTask(t tasks.CloneTask) *proto.Task {
	return &proto.Task{
		RepoID:   t.RepoID,
		RepoName: t.RepoName,
		Worktree: t.Worktree,
		State:    string(t.State),
		Error:    int32(t.Error),
	}
}

func toProtoTransfer(t tasks.TransferTask) *proto.TransferTask {
	return &proto.TransferTask{
		ID:             t.ID,
		RepoID:         t.RepoID,
		Type:           string(t.Direction),
		RTState:        string(t.RTState),
		BlockTotal:     t.BlockTotal,
		BlockDone:      t.BlockDone,
		FSObjectsTotal: t.FSObjectsTotal,
		FSObjectsDone:  t.FSObjectsDone,
		Rate:           t.Rate,
		Error:          int32(t.Error),
	}
}
