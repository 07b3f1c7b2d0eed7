package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDeliversResult(t *testing.T) {
	ch := Run(context.Background(), func(ctx context.Context) Result {
		return Result{Kind: Fetch, Success: true, Message: "ok"}
	})

	select {
	case res, ok := <-ch:
		require.True(t, ok)
		assert.True(t, res.Success)
		assert.Equal(t, Fetch, res.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}
}

func TestRunPanicClosesChannelWithoutValue(t *testing.T) {
	ch := Run(context.Background(), func(ctx context.Context) Result {
		panic("boom")
	})

	select {
	case res, ok := <-ch:
		assert.False(t, ok)
		assert.Equal(t, Result{}, res)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestNewTokenIsUnique(t *testing.T) {
	a := NewToken()
	b := NewToken()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}

func TestKindVerb(t *testing.T) {
	cases := map[Kind]string{
		Fetch:  "Fetching",
		Pull:   "Pulling",
		Push:   "Pushing",
		Add:    "Adding",
		Delete: "Deleting",
		Merge:  "Merging",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.Verb())
	}
}
