// Package remote is the HTTP client for the classification service. The
// service owns all domain intelligence; this client only submits documents,
// polls their processing state and forwards mutations.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/avolkov/docstream/internal/core/domain"
	"github.com/avolkov/docstream/internal/infrastructure/resilience"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	// submitExec never retries; an upload re-sent behind the caller's back
	// would mint a duplicate document. pollExec retries transient failures.
	submitExec *resilience.Executor
	pollExec   *resilience.Executor
}

type Options struct {
	HTTPClient     *http.Client
	SubmitExecutor *resilience.Executor
	PollExecutor   *resilience.Executor
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return NewWithOptions(baseURL, apiKey, timeout, Options{})
}

func NewWithOptions(baseURL, apiKey string, timeout time.Duration, options Options) *Client {
	httpClient := options.HTTPClient
	if httpClient == nil {
		if timeout <= 0 {
			timeout = 2 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	submitExec := options.SubmitExecutor
	if submitExec == nil {
		submitExec = resilience.NewExecutor(resilience.NoRetryConfig())
	}
	pollExec := options.PollExecutor
	if pollExec == nil {
		pollExec = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		http:       httpClient,
		submitExec: submitExec,
		pollExec:   pollExec,
	}
}

// Submit posts the file as multipart form data, streaming the body through a
// progress reader so onProgress sees monotonic 0..100 percentages.
func (c *Client) Submit(ctx context.Context, meta domain.FileMeta, body io.Reader, onProgress func(int)) (*domain.UploadResult, error) {
	var result *domain.UploadResult
	call := func(callCtx context.Context) error {
		res, err := c.submitOnce(callCtx, meta, body, onProgress)
		if err != nil {
			return err
		}
		result = res
		return nil
	}
	if err := c.submitExec.Execute(ctx, "remote.submit", call, classifyHTTPError); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) submitOnce(ctx context.Context, meta domain.FileMeta, body io.Reader, onProgress func(int)) (*domain.UploadResult, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreatePart(fileHeader(meta))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		tracked := newProgressReader(body, meta.Size, onProgress)
		if _, err := io.Copy(part, tracked); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/documents", pr)
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError("submit", resp)
	}

	var result domain.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode submit response: %w", err)
	}
	if result.DocumentID == "" {
		return nil, fmt.Errorf("submit response missing document id")
	}
	return &result, nil
}

// Status fetches the remote processing state of a submitted document.
func (c *Client) Status(ctx context.Context, documentID string) (domain.RemoteDocument, error) {
	var doc domain.RemoteDocument
	call := func(callCtx context.Context) error {
		req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL+"/v1/documents/"+documentID, nil)
		if err != nil {
			return fmt.Errorf("build status request: %w", err)
		}
		c.authorize(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("status request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return c.statusError("status", resp)
		}
		return json.NewDecoder(resp.Body).Decode(&doc)
	}
	if err := c.pollExec.Execute(ctx, "remote.status", call, classifyHTTPError); err != nil {
		return domain.RemoteDocument{}, err
	}
	return doc, nil
}

func (c *Client) Delete(ctx context.Context, documentID string) error {
	return c.mutate(ctx, "remote.delete", http.MethodDelete, "/v1/documents/"+documentID, nil)
}

func (c *Client) Reprocess(ctx context.Context, documentID string) error {
	return c.mutate(ctx, "remote.reprocess", http.MethodPost, "/v1/documents/"+documentID+"/reprocess", nil)
}

func (c *Client) ReprocessBatch(ctx context.Context, documentIDs []string) error {
	payload, err := json.Marshal(map[string][]string{"document_ids": documentIDs})
	if err != nil {
		return fmt.Errorf("encode batch payload: %w", err)
	}
	return c.mutate(ctx, "remote.reprocess_batch", http.MethodPost, "/v1/documents/reprocess-batch", payload)
}

func (c *Client) mutate(ctx context.Context, operation, method, path string, payload []byte) error {
	call := func(callCtx context.Context) error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(callCtx, method, c.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("build %s request: %w", operation, err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		c.authorize(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%s request: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return c.statusError(operation, resp)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return c.submitExec.Execute(ctx, operation, call, classifyHTTPError)
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// statusError surfaces the server's human-readable message when it sends one.
func (c *Client) statusError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := strings.TrimSpace(string(raw))

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		message = payload.Error
	}
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    message,
	}
}

func fileHeader(meta domain.FileMeta) textproto.MIMEHeader {
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, meta.Name))
	mediaType := meta.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	header.Set("Content-Type", mediaType)
	return header
}
