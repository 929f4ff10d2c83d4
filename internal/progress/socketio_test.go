package progress

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/specialistvlad/proteindiff/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sioserver "github.com/zishang520/socket.io/v2/socket"
)

// newDashboard starts a socket.io server that forwards every progress
// payload received on namespace to the returned channel.
func newDashboard(t *testing.T, namespace string) (string, <-chan map[string]any) {
	t.Helper()
	received := make(chan map[string]any, 8)

	io := sioserver.NewServer(nil, nil)
	io.Of(namespace, func(clients ...any) {
		client := clients[0].(*sioserver.Socket)
		client.On(SocketIOEvent, func(datas ...any) {
			if len(datas) == 0 {
				return
			}
			if fields, ok := datas[0].(map[string]any); ok {
				received <- fields
			}
		})
	})

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", io.ServeHandler(nil))
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		io.Close(nil)
		srv.Close()
	})
	return srv.URL, received
}

func TestSocketIOReporter_EmitsEvents(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	url, received := newDashboard(t, "/designs")

	reporter, err := DialSocketIO(ctx, url, "/designs")
	require.NoError(t, err)
	defer reporter.Close()

	// --- Act ---
	reporter.Report(ctx, Event{Kind: DesignFinished, RunID: "run-1", DesignIndex: 3, Path: "out/design_00003.pdb", Seconds: 1.5})

	// --- Assert ---
	select {
	case fields := <-received:
		assert.Equal(t, "design_finished", fields["kind"])
		assert.Equal(t, "run-1", fields["run_id"])
		assert.EqualValues(t, 3, fields["design_index"])
		assert.Equal(t, "out/design_00003.pdb", fields["path"])
		assert.EqualValues(t, 1.5, fields["seconds"])
	case <-time.After(10 * time.Second):
		t.Fatal("dashboard did not receive the progress event")
	}
}

func TestSocketIOReporter_DropsAfterClose(t *testing.T) {
	ctx, logs := testutil.Context(t)
	url, received := newDashboard(t, "/")

	reporter, err := DialSocketIO(ctx, url, "/")
	require.NoError(t, err)
	require.NoError(t, reporter.Close())

	reporter.Report(ctx, Event{Kind: DesignStarted, DesignIndex: 0})

	assert.Contains(t, logs.String(), "event dropped")
	select {
	case fields := <-received:
		t.Fatalf("unexpected event after close: %v", fields)
	case <-time.After(200 * time.Millisecond):
	}
}
