package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

// apiError 是服务端返回的 {"detail": ...} 错误。
type apiError struct {
	Status int
	Detail string
}

func (e *apiError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Detail, e.Status)
}

func endpoint(path string, query url.Values) string {
	u := strings.TrimRight(serverURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func getJSON(path string, query url.Values) ([]byte, error) {
	resp, err := httpClient.Get(endpoint(path, query))
	if err != nil {
		return nil, fmt.Errorf("error calling %s: %w", path, err)
	}
	return readBody(resp)
}

func postJSON(path string, payload interface{}) ([]byte, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("error creating JSON payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	resp, err := httpClient.Post(endpoint(path, nil), "application/json", body)
	if err != nil {
		return nil, fmt.Errorf("error calling %s: %w", path, err)
	}
	return readBody(resp)
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apiError{Status: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(raw, &detail) == nil {
			apiErr.Detail = detail.Detail
		}
		return nil, apiErr
	}
	return raw, nil
}

// printJSON 缩进输出 JSON，无法解析时原样输出。
func printJSON(w io.Writer, raw []byte) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Fprintln(w, string(raw))
		return
	}
	fmt.Fprintln(w, pretty.String())
}
