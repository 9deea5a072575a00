package mcpclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/tidwall/gjson"
)

// parseSSEResponse scans an event-stream body line by line and returns the
// first payload whose id matches the outstanding request id. Payloads that
// carry a method but no id are fire-and-forget notifications: they are
// logged and skipped. A stream that ends without a match is a fatal
// transport error for the request.
func parseSSEResponse(ctx context.Context, body []byte, requestID string) (*Response, error) {
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if !gjson.Valid(data) {
			logger.ContextKV(ctx, xlog.WARNING, "reason", "invalid_sse_event", "data", data)
			continue
		}

		method := gjson.Get(data, "method")
		id := gjson.Get(data, "id")
		if method.Exists() && !id.Exists() {
			logger.ContextKV(ctx, xlog.DEBUG,
				"status", "mcp_notification",
				"method", method.String())
			continue
		}

		if id.String() != requestID {
			continue
		}

		var resp Response
		if err := json.Unmarshal([]byte(data), &resp); err != nil {
			logger.ContextKV(ctx, xlog.WARNING, "reason", "unparsable_sse_event", "err", err.Error())
			continue
		}
		return &resp, nil
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to scan event stream")
	}
	return nil, errors.Newf("no response found in event stream for request id %s", requestID)
}
