package evonic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Request sends an HTTP request to the fire with a bounded timeout.
//
// A JSON response is returned decoded (numbers as json.Number); any other
// successful response is returned as a string. A GET of BootstrapPath also
// merges the document into the snapshot, creating it on first use, and
// recomputes the effect catalog unless the document carries one.
//
// Errors: timeout → KindTimeout, network failure → KindConnection,
// 4xx/5xx → KindProtocol carrying the decoded JSON body or the raw text.
func (c *Client) Request(ctx context.Context, path, method string, body any) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, NewInvalidArgumentError(fmt.Sprintf("request body cannot be encoded: %v", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.httpBaseURL+path, reader)
	if err != nil {
		return nil, NewConnectionError(c.host, "failed to create request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("HTTP request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ClassifyNetworkError(err, c.host)
	}
	defer func() { _ = resp.Body.Close() }()

	contents, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ClassifyNetworkError(err, c.host)
	}

	contentType := resp.Header.Get("Content-Type")
	isJSON := strings.Contains(contentType, "application/json")

	c.logger.Debug("HTTP response",
		zap.Int("status_code", resp.StatusCode),
		zap.String("content_type", contentType),
		zap.Int("length", len(contents)),
	)

	if class := resp.StatusCode / 100; class == 4 || class == 5 {
		return nil, protocolError(resp.StatusCode, contents, isJSON)
	}

	if !isJSON {
		return string(contents), nil
	}

	var decoded any
	dec := json.NewDecoder(bytes.NewReader(contents))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return nil, NewDecodeError("response is not valid JSON", err)
	}

	if method == http.MethodGet && path == BootstrapPath {
		doc, ok := decoded.(map[string]any)
		if !ok {
			return nil, NewDecodeError("bootstrap document is not a JSON object", nil)
		}
		u, err := decodeMap(doc)
		if err != nil {
			return nil, err
		}
		c.mergeBootstrap(u)
	}

	return decoded, nil
}

func protocolError(status int, contents []byte, isJSON bool) *Error {
	if isJSON {
		var decoded any
		if err := json.Unmarshal(contents, &decoded); err == nil {
			return NewProtocolError(status, decoded)
		}
	}
	e := NewProtocolError(status, map[string]any{"message": string(contents)})
	if text := strings.TrimSpace(string(contents)); text != "" {
		e.Message = fmt.Sprintf("%s: %s", e.Message, text)
	}
	return e
}
