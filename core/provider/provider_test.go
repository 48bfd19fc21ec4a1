package provider_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"datasync/core/model"
	"datasync/core/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func jsonResponse(status int, body string) *provider.Response {
	return &provider.Response{StatusCode: status, Status: "status", ContentType: "application/json", Body: []byte(body)}
}

// queue returns the given responses in order, repeating the last one.
type queue struct {
	mu        sync.Mutex
	responses []*provider.Response
	urls      []string
}

func (q *queue) Fetch(_ context.Context, req *provider.Request) (*provider.Response, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.urls = append(q.urls, req.URL)
	resp := q.responses[0]
	if len(q.responses) > 1 {
		q.responses = q.responses[1:]
	}
	return resp, nil
}

type recorder struct {
	mu     sync.Mutex
	events []provider.Event
}

func record(p *provider.Provider) *recorder {
	r := &recorder{}
	p.Bus().SubscribeAll(func(_ string, ev provider.Event) {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
	})
	return r
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

func (r *recorder) of(typ string) []provider.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []provider.Event
	for _, ev := range r.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func TestProvider_SetReconciliation(t *testing.T) {
	q := &queue{responses: []*provider.Response{
		jsonResponse(200, `[{"key":"A","value":1},{"key":"B","value":2}]`),
		jsonResponse(200, `[{"key":"B","value":3},{"key":"C","value":4}]`),
	}}
	p := provider.New(provider.WithFetcher(q))
	rec := record(p)

	changed, err := p.FetchOnce(context.Background(), "/items", provider.Request{})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"A", "B"}, p.Keys())

	rec.reset()
	changed, err = p.FetchOnce(context.Background(), "/items", provider.Request{})
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, []string{
		provider.EventStarted,
		provider.EventChanged,
		provider.EventAdded,
		provider.EventDeleted,
		provider.EventCompleted,
	}, rec.types())

	ch := rec.of(provider.EventChanged)[0]
	assert.Equal(t, 3.0, ch.Object.(map[string]any)["value"])
	assert.Equal(t, 2.0, ch.Existing.(map[string]any)["value"])
	assert.Equal(t, "C", rec.of(provider.EventAdded)[0].Object.(map[string]any)["key"])
	assert.Equal(t, "A", rec.of(provider.EventDeleted)[0].Object.(map[string]any)["key"])
	assert.True(t, rec.of(provider.EventCompleted)[0].Changed)

	assert.Equal(t, []string{"B", "C"}, p.Keys())
	b, ok := p.ObjectForKey("B")
	require.True(t, ok)
	assert.Equal(t, 3.0, b.(map[string]any)["value"])
	_, ok = p.ObjectForKey("A")
	assert.False(t, ok)
}

func TestProvider_NoopPass(t *testing.T) {
	q := &queue{responses: []*provider.Response{jsonResponse(200, `[{"key":"A","value":1},{"key":"B","value":{"x":[1,2]}}]`)}}
	p := provider.New(provider.WithFetcher(q))
	rec := record(p)

	_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)

	rec.reset()
	changed, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{provider.EventStarted, provider.EventCompleted}, rec.types())
	assert.False(t, rec.of(provider.EventCompleted)[0].Changed)
}

func TestProvider_DeletesInCollectionOrder(t *testing.T) {
	q := &queue{responses: []*provider.Response{
		jsonResponse(200, `[{"key":"c"},{"key":"a"},{"key":"b"}]`),
		jsonResponse(200, `[]`),
	}}
	p := provider.New(provider.WithFetcher(q))
	_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)

	rec := record(p)
	changed, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)
	assert.True(t, changed)

	var deleted []any
	for _, ev := range rec.of(provider.EventDeleted) {
		deleted = append(deleted, ev.Object.(map[string]any)["key"])
	}
	assert.Equal(t, []any{"c", "a", "b"}, deleted)
	assert.Equal(t, 0, p.Len())
}

func TestProvider_SingleObject(t *testing.T) {
	q := &queue{responses: []*provider.Response{
		jsonResponse(200, `{"key":"a","v":1}`),
		jsonResponse(200, `{"key":"a","v":1}`),
		jsonResponse(200, `{"key":"a","v":2}`),
	}}
	p := provider.New(provider.WithFetcher(q))
	rec := record(p)

	changed, err := p.FetchOnce(context.Background(), "/a", provider.Request{})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, rec.of(provider.EventAdded), 1)

	first, _ := p.ObjectForKey("a")
	changed, err = p.FetchOnce(context.Background(), "/a", provider.Request{})
	require.NoError(t, err)
	assert.False(t, changed)
	second, _ := p.ObjectForKey("a")
	assert.Equal(t, first, second)

	changed, err = p.FetchOnce(context.Background(), "/a", provider.Request{})
	require.NoError(t, err)
	assert.True(t, changed)
	evs := rec.of(provider.EventChanged)
	require.Len(t, evs, 1)
	assert.Equal(t, 1.0, evs[0].Existing.(map[string]any)["v"])
	assert.Equal(t, 2.0, evs[0].Object.(map[string]any)["v"])
	assert.Equal(t, 1, p.Len())
}

func TestProvider_ReplacesInsteadOfMutating(t *testing.T) {
	reg := newItemRegistry(t)
	q := &queue{responses: []*provider.Response{
		jsonResponse(200, `{"id":"a","value":1}`),
		jsonResponse(200, `{"id":"a","value":1}`),
		jsonResponse(200, `{"id":"a","value":2}`),
	}}
	p := provider.New(provider.WithFetcher(q), provider.WithConstructor(provider.ModelConstructor(reg, "Item")))

	_, err := p.FetchOnce(context.Background(), "/a", provider.Request{})
	require.NoError(t, err)
	first, ok := p.ObjectForKey("a")
	require.True(t, ok)

	changed, err := p.FetchOnce(context.Background(), "/a", provider.Request{})
	require.NoError(t, err)
	assert.False(t, changed)
	second, _ := p.ObjectForKey("a")
	assert.NotSame(t, first, second, "equal passes still store the new instance")

	changed, err = p.FetchOnce(context.Background(), "/a", provider.Request{})
	require.NoError(t, err)
	assert.True(t, changed)
	third, _ := p.ObjectForKey("a")
	assert.NotSame(t, second, third)
	assert.Equal(t, 2.0, third.(*model.Instance).Get("value"))
	assert.Equal(t, 1.0, first.(*model.Instance).Get("value"))
	assert.Equal(t, 1.0, second.(*model.Instance).Get("value"))
}

func TestProvider_KeylessObject(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"NoKey", `{"value":1}`},
		{"EmptyKey", `{"key":"","value":1}`},
		{"ZeroKey", `{"key":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := provider.New(provider.WithFetcher(&queue{responses: []*provider.Response{jsonResponse(200, tt.body)}}))
			rec := record(p)

			for i := 0; i < 2; i++ {
				changed, err := p.FetchOnce(context.Background(), "/", provider.Request{})
				require.NoError(t, err)
				assert.True(t, changed)
			}
			assert.Len(t, rec.of(provider.EventAdded), 2)
			assert.Equal(t, 0, p.Len())
		})
	}
}

func TestProvider_NumericKey(t *testing.T) {
	p := provider.New(provider.WithFetcher(&queue{responses: []*provider.Response{jsonResponse(200, `[{"key":7}]`)}}))
	_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, p.Keys())
}

func TestProvider_ErrorFromBody(t *testing.T) {
	q := &queue{responses: []*provider.Response{
		jsonResponse(200, `[{"key":"a"}]`),
		jsonResponse(400, `{"reason":"bad filter","code":"E_FILTER"}`),
	}}
	p := provider.New(provider.WithFetcher(q))
	_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)

	rec := record(p)
	changed, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	assert.False(t, changed)

	var reqErr *provider.Error
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "bad filter", reqErr.Reason)
	assert.Equal(t, "E_FILTER", reqErr.Code)
	assert.True(t, provider.IsRequestError(err))

	assert.Equal(t, []string{provider.EventStarted, provider.EventError}, rec.types())
	assert.Equal(t, err, rec.of(provider.EventError)[0].Err)
	assert.Equal(t, []string{"a"}, p.Keys(), "collection untouched")
}

func TestProvider_ErrorFromStatus(t *testing.T) {
	tests := []struct {
		name string
		resp *provider.Response
	}{
		{"Text", &provider.Response{StatusCode: 503, Status: "Service Unavailable", ContentType: "text/plain", Body: []byte("down")}},
		{"JSONWithoutReason", &provider.Response{StatusCode: 503, Status: "Service Unavailable", ContentType: "application/json", Body: []byte(`{"message":"x"}`)}},
		{"InvalidJSON", &provider.Response{StatusCode: 503, Status: "Service Unavailable", ContentType: "application/json", Body: []byte(`<html>`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := provider.New(provider.WithFetcher(&queue{responses: []*provider.Response{tt.resp}}))
			_, err := p.FetchOnce(context.Background(), "/", provider.Request{})

			var reqErr *provider.Error
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, "Service Unavailable", reqErr.Reason)
			assert.Equal(t, 503, reqErr.Code)
			assert.Equal(t, "Service Unavailable (code 503)", err.Error())
		})
	}
}

func TestProvider_TransportAndDecodeErrors(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("Transport", func(t *testing.T) {
		p := provider.New(provider.WithFetcher(provider.FetcherFunc(func(context.Context, *provider.Request) (*provider.Response, error) {
			return nil, boom
		})))
		rec := record(p)
		_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{provider.EventStarted, provider.EventError}, rec.types())
	})

	t.Run("Decode", func(t *testing.T) {
		p := provider.New(provider.WithFetcher(&queue{responses: []*provider.Response{jsonResponse(200, `{`)}}))
		rec := record(p)
		_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
		assert.Error(t, err)
		assert.False(t, provider.IsRequestError(err))
		assert.Equal(t, []string{provider.EventStarted, provider.EventError}, rec.types())
	})
}

func TestProvider_BodyKinds(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		p := provider.New(provider.WithFetcher(&queue{responses: []*provider.Response{
			{StatusCode: 200, ContentType: "text/plain; charset=utf-8", Body: []byte("hello")},
		}}))
		rec := record(p)
		changed, err := p.FetchOnce(context.Background(), "/", provider.Request{})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, "hello", rec.of(provider.EventAdded)[0].Object)
	})

	t.Run("Binary", func(t *testing.T) {
		p := provider.New(provider.WithFetcher(&queue{responses: []*provider.Response{
			{StatusCode: 200, ContentType: "image/png", Body: []byte{0x89}},
		}}))
		rec := record(p)
		_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89}, rec.of(provider.EventAdded)[0].Object)
	})

	t.Run("Null", func(t *testing.T) {
		p := provider.New(provider.WithFetcher(&queue{responses: []*provider.Response{jsonResponse(200, `null`)}}))
		rec := record(p)
		_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, rec.of(provider.EventAdded)[0].Object)
	})
}

func newItemRegistry(t *testing.T) *model.Registry {
	t.Helper()
	reg := model.NewRegistry()
	_, err := reg.Register("Item", []model.FieldDecl{
		model.F("key", "id string"),
		model.F("value", "number"),
	}, "")
	require.NoError(t, err)
	return reg
}

func TestProvider_ModelConstructor(t *testing.T) {
	reg := newItemRegistry(t)
	q := &queue{responses: []*provider.Response{
		jsonResponse(200, `[{"id":"a","value":"3"},{"id":"b","value":4}]`),
		jsonResponse(200, `[{"id":"a","value":3},{"id":"b","value":5}]`),
	}}
	p := provider.New(provider.WithFetcher(q), provider.WithConstructor(provider.ModelConstructor(reg, "Item")))
	rec := record(p)

	_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)
	a, ok := p.ObjectForKey("a")
	require.True(t, ok)
	inst := a.(*model.Instance)
	assert.Equal(t, 3.0, inst.Get("value"))

	rec.reset()
	changed, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)
	assert.True(t, changed)
	evs := rec.of(provider.EventChanged)
	require.Len(t, evs, 1, "a is equal after casting, only b changed")
	assert.Equal(t, "b", evs[0].Object.(*model.Instance).Get("key"))
}

func TestProvider_ModelConstructorError(t *testing.T) {
	reg := newItemRegistry(t)
	p := provider.New(
		provider.WithFetcher(&queue{responses: []*provider.Response{{StatusCode: 200, ContentType: "text/plain", Body: []byte("x")}}}),
		provider.WithConstructor(provider.ModelConstructor(reg, "Item")),
	)
	rec := record(p)
	_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	assert.ErrorIs(t, err, model.ErrNotObject)
	assert.Equal(t, []string{provider.EventStarted, provider.EventError}, rec.types())
}

type named struct{ id string }

func (n named) Key() any { return n.id }

func TestProvider_CustomKeys(t *testing.T) {
	t.Run("KeyFunc", func(t *testing.T) {
		p := provider.New(
			provider.WithFetcher(&queue{responses: []*provider.Response{jsonResponse(200, `[{"uid":"x"},{"uid":"y"}]`)}}),
			provider.WithKeyFunc(provider.FieldKey("uid")),
		)
		_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, p.Keys())
	})

	t.Run("Keyer", func(t *testing.T) {
		p := provider.New(
			provider.WithFetcher(&queue{responses: []*provider.Response{jsonResponse(200, `{"id":"n1"}`)}}),
			provider.WithConstructor(func(data any) (any, error) {
				return named{id: data.(map[string]any)["id"].(string)}, nil
			}),
		)
		_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
		require.NoError(t, err)
		obj, ok := p.ObjectForKey("n1")
		require.True(t, ok)
		assert.Equal(t, named{id: "n1"}, obj)
	})
}

func TestProvider_PassURL(t *testing.T) {
	q := &queue{responses: []*provider.Response{jsonResponse(200, `[]`)}}
	p := provider.New(provider.WithFetcher(q), provider.WithOrigin("http://api.test"))
	rec := record(p)

	_, err := p.FetchOnce(context.Background(), "users", provider.Request{})
	require.NoError(t, err)
	assert.Equal(t, "http://api.test/users", rec.of(provider.EventStarted)[0].URL)
	assert.Equal(t, "http://api.test/users", rec.of(provider.EventCompleted)[0].URL)
	assert.Equal(t, []string{"http://api.test/users"}, q.urls)
	assert.Equal(t, "http://api.test", p.Origin())
}

func TestProvider_EventsCarrySender(t *testing.T) {
	p := provider.New(provider.WithFetcher(&queue{responses: []*provider.Response{jsonResponse(200, `[{"key":"a"}]`)}}))
	var seen []*provider.Provider
	var passIDs []string
	p.Bus().SubscribeAll(func(_ string, ev provider.Event) {
		seen = append(seen, ev.Sender)
		passIDs = append(passIDs, ev.PassID)
	})

	_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)
	require.Len(t, seen, 3)
	for i := range seen {
		assert.Same(t, p, seen[i])
		assert.Equal(t, passIDs[0], passIDs[i])
	}
	assert.NotEmpty(t, passIDs[0])
}

func TestProvider_ListenersSeeAppliedPass(t *testing.T) {
	q := &queue{responses: []*provider.Response{
		jsonResponse(200, `[{"key":"a"},{"key":"b"}]`),
		jsonResponse(200, `[{"key":"c"}]`),
	}}
	p := provider.New(provider.WithFetcher(q))
	var added []int
	p.On(provider.EventAdded, func(_ string, ev provider.Event) {
		added = append(added, p.Len())
	})
	var deleted [][]string
	p.On(provider.EventDeleted, func(_ string, ev provider.Event) {
		deleted = append(deleted, p.Keys())
	})

	_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, added)

	_, err = p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"c"}, {"c"}}, deleted)
}

func TestProvider_ListenerCanStartPass(t *testing.T) {
	q := &queue{responses: []*provider.Response{jsonResponse(200, `[{"key":"a"}]`)}}
	p := provider.New(provider.WithFetcher(q))
	var nested atomic.Bool
	var nestedErr error
	p.On(provider.EventCompleted, func(_ string, ev provider.Event) {
		if nested.CompareAndSwap(false, true) {
			_, nestedErr = p.FetchOnce(context.Background(), "/next", provider.Request{})
		}
	})

	done := make(chan error, 1)
	go func() {
		_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pass started from a completed listener deadlocked")
	}
	require.NoError(t, nestedErr)
	q.mu.Lock()
	defer q.mu.Unlock()
	assert.Equal(t, []string{"/", "/next"}, q.urls)
}

func TestProvider_Clear(t *testing.T) {
	p := provider.New(provider.WithFetcher(&queue{responses: []*provider.Response{jsonResponse(200, `[{"key":"a"},{"key":"b"}]`)}}))
	_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)

	rec := record(p)
	p.Clear()
	assert.Equal(t, 0, p.Len())
	assert.Empty(t, p.Objects())
	assert.Empty(t, rec.types())

	changed, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, rec.of(provider.EventAdded), 2)
}

func TestProvider_StalePassIsDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	f := provider.FetcherFunc(func(_ context.Context, req *provider.Request) (*provider.Response, error) {
		if req.Header["X-Pass"] == "slow" {
			close(entered)
			<-release
			return jsonResponse(200, `[{"key":"old"}]`), nil
		}
		return jsonResponse(200, `[{"key":"new"}]`), nil
	})
	p := provider.New(provider.WithFetcher(f))
	rec := record(p)

	type result struct {
		changed bool
		err     error
	}
	slow := make(chan result, 1)
	go func() {
		changed, err := p.FetchOnce(context.Background(), "/", provider.Request{Header: map[string]string{"X-Pass": "slow"}})
		slow <- result{changed, err}
	}()
	<-entered

	changed, err := p.FetchOnce(context.Background(), "/", provider.Request{})
	require.NoError(t, err)
	assert.True(t, changed)

	close(release)
	res := <-slow
	require.NoError(t, res.err)
	assert.False(t, res.changed)

	assert.Equal(t, []string{"new"}, p.Keys())
	assert.Len(t, rec.of(provider.EventCompleted), 2)
	assert.Len(t, rec.of(provider.EventAdded), 1)
	assert.Empty(t, rec.of(provider.EventDeleted))
}

func TestProvider_RequestRepeats(t *testing.T) {
	var calls atomic.Int32
	f := provider.FetcherFunc(func(context.Context, *provider.Request) (*provider.Response, error) {
		calls.Add(1)
		return jsonResponse(200, `[]`), nil
	})
	p := provider.New(provider.WithFetcher(f))

	_, err := p.Request(context.Background(), "/", provider.Request{}, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	p.Cancel()
	p.Cancel()
	p.Wait()
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
}

func TestProvider_RequestReplacesTimer(t *testing.T) {
	var calls atomic.Int32
	f := provider.FetcherFunc(func(context.Context, *provider.Request) (*provider.Response, error) {
		calls.Add(1)
		return jsonResponse(200, `[]`), nil
	})
	p := provider.New(provider.WithFetcher(f))

	_, err := p.Request(context.Background(), "/", provider.Request{}, time.Hour)
	require.NoError(t, err)
	_, err = p.Request(context.Background(), "/", provider.Request{}, 0)
	require.NoError(t, err)
	p.Wait()
	assert.Equal(t, int32(2), calls.Load())
}

func TestProvider_ConcurrentRequestsKeepOneLoop(t *testing.T) {
	var calls atomic.Int32
	f := provider.FetcherFunc(func(context.Context, *provider.Request) (*provider.Response, error) {
		calls.Add(1)
		return jsonResponse(200, `[]`), nil
	})
	p := provider.New(provider.WithFetcher(f))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Request(context.Background(), "/", provider.Request{}, 2*time.Millisecond)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Eventually(t, func() bool { return calls.Load() >= 6 }, time.Second, time.Millisecond)

	p.Cancel()
	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loops did not stop")
	}
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "a replaced loop kept running")
}

func TestProvider_RequestStopsWithContext(t *testing.T) {
	p := provider.New(provider.WithFetcher(&queue{responses: []*provider.Response{jsonResponse(200, `[]`)}}))
	ctx, cancel := context.WithCancel(context.Background())
	_, err := p.Request(ctx, "/", provider.Request{}, time.Millisecond)
	require.NoError(t, err)

	cancel()
	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestProvider_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := provider.New(
		provider.WithFetcher(&queue{responses: []*provider.Response{
			jsonResponse(200, `[{"key":"a"}]`),
			jsonResponse(500, `{"reason":"boom"}`),
		}}),
		provider.WithLogger(zap.New(core)),
	)

	_, err := p.FetchOnce(context.Background(), "/x", provider.Request{})
	require.NoError(t, err)

	completed := logs.FilterMessage("Pass completed").All()
	require.Len(t, completed, 1)
	fields := completed[0].ContextMap()
	assert.Equal(t, "/x", fields["url"])
	assert.Equal(t, true, fields["changed"])
	assert.NotEmpty(t, fields["pass_id"])

	_, err = p.FetchOnce(context.Background(), "/x", provider.Request{})
	require.Error(t, err)
	failed := logs.FilterMessage("Pass failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
}

type recordingTracer struct {
	noop.Tracer
	mu    sync.Mutex
	names []string
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	r.mu.Lock()
	r.names = append(r.names, name)
	r.mu.Unlock()
	return r.Tracer.Start(ctx, name, opts...)
}

func TestProvider_Tracing(t *testing.T) {
	tr := &recordingTracer{}
	p := provider.New(
		provider.WithFetcher(&queue{responses: []*provider.Response{jsonResponse(200, `[]`)}}),
		provider.WithTracer(tr),
	)
	for i := 0; i < 2; i++ {
		_, err := p.FetchOnce(context.Background(), "/", provider.Request{})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"provider.pass", "provider.pass"}, tr.names)
}

func TestConfig(t *testing.T) {
	cfg := provider.Config{Source: "http", IntervalMs: 250}
	assert.True(t, cfg.IsValidSource())
	assert.Equal(t, 250*time.Millisecond, cfg.Interval())
	assert.Equal(t, 30*time.Second, cfg.Timeout())

	cfg = provider.Config{Source: "ftp", TimeoutSeconds: 2}
	assert.False(t, cfg.IsValidSource())
	assert.Equal(t, time.Duration(0), cfg.Interval())
	assert.Equal(t, 2*time.Second, cfg.Timeout())
}
