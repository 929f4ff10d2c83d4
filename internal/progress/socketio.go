package progress

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/proteindiff/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIOEvent is the socket.io event name every progress event is emitted
// under.
const SocketIOEvent = "progress"

// connectTimeout bounds how long Dial waits for the server.
const connectTimeout = 15 * time.Second

// SocketIOReporter emits progress events to a socket.io server, typically a
// dashboard following long batches.
type SocketIOReporter struct {
	client *socket.Socket
}

// DialSocketIO connects to rawURL on namespace and returns a reporter once
// the connection is established.
func DialSocketIO(ctx context.Context, rawURL, namespace string) (*SocketIOReporter, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL, "namespace", namespace)
	logger.Debug("Connecting progress feed...")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("progress URL %q needs a scheme and host", rawURL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Progress feed connected.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIOReporter{client: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}
}

// Report implements Reporter. Events are dropped while disconnected.
func (r *SocketIOReporter) Report(ctx context.Context, e Event) {
	if !r.client.Connected() {
		ctxlog.FromContext(ctx).Debug("Progress feed disconnected, event dropped.", "kind", e.Kind)
		return
	}
	r.client.Emit(SocketIOEvent, e.Fields())
}

// Close disconnects from the server.
func (r *SocketIOReporter) Close() error {
	r.client.Disconnect()
	return nil
}
