package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// SignatureWatcher ждёт signatureNotification по websocket.
type SignatureWatcher struct {
	url    string
	dialer websocket.Dialer
}

func NewSignatureWatcher(url string) *SignatureWatcher {
	return &SignatureWatcher{
		url:    url,
		dialer: websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Wait блокируется до уведомления или отмены ctx.
func (w *SignatureWatcher) Wait(ctx context.Context, sig string) (SignatureStatus, error) {
	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return StatusUnknown, errors.Wrap(err, "websocket dial")
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	payload, err := sonic.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "signatureSubscribe",
		Params:  []any{sig, map[string]string{"commitment": "confirmed"}},
	})
	if err != nil {
		return StatusUnknown, errors.Wrap(err, "marshal subscribe")
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return StatusUnknown, errors.Wrap(err, "write subscribe")
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return StatusUnknown, ctx.Err()
			}
			return StatusUnknown, errors.Wrap(err, "websocket read")
		}

		res := gjson.ParseBytes(msg)
		if e := res.Get("error"); e.Exists() && e.Type != gjson.Null {
			return StatusUnknown, errors.Errorf("signatureSubscribe: %s", e.Get("message").String())
		}
		if res.Get("method").String() != "signatureNotification" {
			continue
		}
		if e := res.Get("params.result.value.err"); e.Exists() && e.Type != gjson.Null {
			return StatusFailed, nil
		}
		return StatusConfirmed, nil
	}
}
