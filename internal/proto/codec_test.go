package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func strPtr(s string) *string { return &s }

func TestCodec_Registered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodec_AbsentAndEmptyPasswdStayDistinct(t *testing.T) {
	var c Codec

	absent := &CloneRequest{RepoSource: RepoSource{RepoID: "r1"}, Worktree: "/tmp/lib"}
	empty := &CloneRequest{RepoSource: RepoSource{RepoID: "r1", Passwd: strPtr("")}, Worktree: "/tmp/lib"}

	b1, err := c.Marshal(absent)
	require.NoError(t, err)
	b2, err := c.Marshal(empty)
	require.NoError(t, err)
	assert.NotEqual(t, b1, b2)

	var got1, got2 CloneRequest
	require.NoError(t, c.Unmarshal(b1, &got1))
	require.NoError(t, c.Unmarshal(b2, &got2))

	assert.Nil(t, got1.Passwd)
	require.NotNil(t, got2.Passwd)
	assert.Equal(t, "", *got2.Passwd)
	assert.Equal(t, "/tmp/lib", got2.Worktree)
	assert.Equal(t, "r1", got2.RepoID)
}

func TestCodec_Deterministic(t *testing.T) {
	var c Codec
	r := &Repo{ID: "r1", Name: "lib", Worktree: "/tmp/lib", Version: 1}
	b1, err := c.Marshal(r)
	require.NoError(t, err)
	b2, err := c.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestCodec_OptionalTaskInResponse(t *testing.T) {
	var c Codec

	b, err := c.Marshal(&FindTransferTaskResponse{})
	require.NoError(t, err)
	var none FindTransferTaskResponse
	require.NoError(t, c.Unmarshal(b, &none))
	assert.Nil(t, none.Task)

	b, err = c.Marshal(&FindTransferTaskResponse{Task: &TransferTask{RepoID: "r1", BlockDone: 50, BlockTotal: 200}})
	require.NoError(t, err)
	var some FindTransferTaskResponse
	require.NoError(t, c.Unmarshal(b, &some))
	require.NotNil(t, some.Task)
	assert.Equal(t, int64(200), some.Task.BlockTotal)
}
