package conversation_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/klarbill-gateway/conversation"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo(t *testing.T) {
	repo := conversation.NewInMemoryRepo()
	now := time.Now()

	require.Error(t, repo.Append("", conversation.Turn{}))
	require.NoError(t, repo.Append("s1", conversation.Turn{Role: conversation.RoleUser, Content: "hi", Timestamp: now}))
	require.NoError(t, repo.Append("s1", conversation.Turn{Role: conversation.RoleAssistant, Content: "hello", Timestamp: now}))
	require.NoError(t, repo.Append("s2", conversation.Turn{Role: conversation.RoleUser, Content: "other"}))

	turns, err := repo.List("s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Equal(t, "user: hi\nassistant: hello", conversation.Transcript(turns))

	turns[0].Content = "mutated"
	again, _ := repo.List("s1")
	require.Equal(t, "hi", again[0].Content)

	require.NoError(t, repo.Clear("s1"))
	turns, _ = repo.List("s1")
	require.Empty(t, turns)
	turns, _ = repo.List("s2")
	require.Len(t, turns, 1)
}
