package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// TestContext carries HTTP state across the steps of one scenario.
type TestContext struct {
	BaseURL    string
	HTTPClient *http.Client

	runID      string
	actor      string
	tokens     map[string]string
	ids        map[string]string
	lastStatus int
	lastBody   []byte
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears per-scenario state and picks a fresh run id so emails and
// locations never collide with data left by earlier runs.
func (tc *TestContext) Reset() {
	tc.runID = strconv.FormatInt(time.Now().UnixNano(), 36)
	tc.actor = ""
	tc.tokens = make(map[string]string)
	tc.ids = make(map[string]string)
	tc.lastStatus = 0
	tc.lastBody = nil
}

func (tc *TestContext) RunID() string { return tc.runID }

// Expand substitutes ${run} and ${alias} placeholders with the run id and
// remembered ids.
func (tc *TestContext) Expand(s string) string {
	return os.Expand(s, func(key string) string {
		if key == "run" {
			return tc.runID
		}
		return tc.ids[key]
	})
}

func (tc *TestContext) Remember(alias, value string) { tc.ids[alias] = value }

func (tc *TestContext) ID(alias string) (string, error) {
	v, ok := tc.ids[alias]
	if !ok {
		return "", fmt.Errorf("nothing remembered as %q", alias)
	}
	return v, nil
}

func (tc *TestContext) SetToken(alias, token string) { tc.tokens[alias] = token }

// ActAs makes subsequent requests carry alias's bearer token. An empty alias
// sends requests anonymously.
func (tc *TestContext) ActAs(alias string) error {
	if alias != "" {
		if _, ok := tc.tokens[alias]; !ok {
			return fmt.Errorf("%q has not logged in", alias)
		}
	}
	tc.actor = alias
	return nil
}

func (tc *TestContext) Do(ctx context.Context, method, path string, body any) error {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(tc.Expand(b))
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, tc.BaseURL+tc.Expand(path), reader)
	if err != nil {
		return err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tc.tokens[tc.actor]; tc.actor != "" && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) Status() int { return tc.lastStatus }

func (tc *TestContext) Body() []byte { return tc.lastBody }

// Decode unmarshals the last response body into v.
func (tc *TestContext) Decode(v any) error {
	if err := json.Unmarshal(tc.lastBody, v); err != nil {
		return fmt.Errorf("decode response %q: %w", tc.lastBody, err)
	}
	return nil
}

// Field resolves a dotted path such as "stock.A+" or "0.donors.1.units"
// against the last JSON response.
func (tc *TestContext) Field(path string) (any, error) {
	var doc any
	if err := tc.Decode(&doc); err != nil {
		return nil, err
	}
	cur := doc
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %q missing in %s", path, tc.lastBody)
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("index %q out of range in %s", part, tc.lastBody)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("cannot descend into %q of %s", part, tc.lastBody)
		}
	}
	return cur, nil
}

// ExpectStatus fails with the response body when the last status differs.
func (tc *TestContext) ExpectStatus(want int) error {
	if tc.lastStatus != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, tc.lastStatus, tc.lastBody)
	}
	return nil
}
