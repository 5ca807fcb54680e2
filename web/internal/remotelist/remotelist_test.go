package remotelist_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Astemirdum/library-web/web/internal/remotelist"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type query struct {
	Term string
	Page int
}

func settle[Q, R any](t *testing.T, l *remotelist.List[Q, R]) remotelist.Snapshot[Q, R] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := l.Settle(ctx)
	require.NoError(t, err)
	return s
}

func setTerm(v string) func(*query) bool {
	return func(q *query) bool {
		if q.Term == v {
			return false
		}
		q.Term = v
		q.Page = 1
		return true
	}
}

func TestList_RefreshAndNoop(t *testing.T) {
	var calls int32
	l := remotelist.New(func(_ context.Context, q query) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		return []string{q.Term}, nil
	}, query{Term: "x", Page: 1})
	defer l.Close()

	require.Equal(t, remotelist.Idle, l.View().State)
	require.False(t, l.Update(setTerm("x"), false))
	require.Equal(t, remotelist.Idle, l.View().State)

	l.Refresh()
	s := settle(t, l)
	require.Equal(t, remotelist.Ready, s.State)
	require.Equal(t, []string{"x"}, s.Result)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestList_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	l := remotelist.New(func(_ context.Context, q query) (string, error) {
		if q.Term == "slow" {
			<-release
		}
		return q.Term, nil
	}, query{})
	defer l.Close()

	require.True(t, l.Update(setTerm("slow"), false))
	require.True(t, l.Update(setTerm("fast"), false))
	s := settle(t, l)
	require.Equal(t, "fast", s.Result)

	close(release)
	time.Sleep(20 * time.Millisecond)
	s = l.View()
	require.Equal(t, "fast", s.Result)
	require.Equal(t, "fast", s.Query.Term)
	require.Equal(t, remotelist.Ready, s.State)
}

func TestList_SupersededFetchCancelled(t *testing.T) {
	cancelled := make(chan struct{})
	l := remotelist.New(func(ctx context.Context, q query) (string, error) {
		if q.Term == "first" {
			<-ctx.Done()
			close(cancelled)
			return "", ctx.Err()
		}
		return q.Term, nil
	}, query{})
	defer l.Close()

	l.Update(setTerm("first"), false)
	l.Update(setTerm("second"), false)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded fetch was not cancelled")
	}
	s := settle(t, l)
	require.Equal(t, remotelist.Ready, s.State)
	require.Equal(t, "second", s.Result)
}

func TestList_DebounceCollapsesBurst(t *testing.T) {
	var (
		mu    sync.Mutex
		terms []string
	)
	l := remotelist.New(func(_ context.Context, q query) (string, error) {
		mu.Lock()
		terms = append(terms, q.Term)
		mu.Unlock()
		return q.Term, nil
	}, query{}, remotelist.WithDebounce(30*time.Millisecond))
	defer l.Close()

	for _, term := range []string{"h", "ho", "hob", "hobb", "hobbit"} {
		l.Update(setTerm(term), true)
		require.True(t, l.View().Loading())
	}
	s := settle(t, l)
	require.Equal(t, "hobbit", s.Result)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"hobbit"}, terms)
}

func TestList_ErrorResetsResult(t *testing.T) {
	fail := errors.New("backend down")
	var broken atomic.Bool
	l := remotelist.New(func(_ context.Context, q query) ([]string, error) {
		if broken.Load() {
			return nil, fail
		}
		return []string{"a", "b"}, nil
	}, query{})
	defer l.Close()

	l.Refresh()
	require.Len(t, settle(t, l).Result, 2)

	broken.Store(true)
	l.Update(setTerm("z"), false)
	s := settle(t, l)
	require.Equal(t, remotelist.Errored, s.State)
	require.ErrorIs(t, s.Err, fail)
	require.Empty(t, s.Result)
}

func TestList_Patch(t *testing.T) {
	release := make(chan struct{})
	l := remotelist.New(func(_ context.Context, q query) ([]int, error) {
		if q.Page == 2 {
			<-release
		}
		return []int{1, 2, 3}, nil
	}, query{Page: 1})
	defer l.Close()

	l.Refresh()
	settle(t, l)
	require.True(t, l.Patch(func(r *[]int) bool {
		(*r)[1] = 20
		return true
	}))
	require.Equal(t, []int{1, 20, 3}, l.View().Result)

	l.Update(func(q *query) bool { q.Page = 2; return true }, false)
	require.False(t, l.Patch(func(r *[]int) bool { return true }))
	close(release)
	settle(t, l)
}

func TestList_Close(t *testing.T) {
	started := make(chan struct{})
	l := remotelist.New(func(ctx context.Context, _ query) (string, error) {
		close(started)
		<-ctx.Done()
		return "late", nil
	}, query{})

	l.Refresh()
	<-started
	l.Close()

	s := settle(t, l)
	require.NotEqual(t, "late", s.Result)
	require.False(t, l.Update(setTerm("again"), false))
}

func TestList_WithTimeout(t *testing.T) {
	l := remotelist.New(func(ctx context.Context, _ query) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}, query{}, remotelist.WithTimeout(10*time.Millisecond))
	defer l.Close()

	l.Refresh()
	s := settle(t, l)
	require.Equal(t, remotelist.Errored, s.State)
	require.ErrorIs(t, s.Err, context.DeadlineExceeded)
}
