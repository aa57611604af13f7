package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func doRequest(method, path string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, apiFlag+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+keyFlag)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

func doGet(path string) ([]byte, error) { return doRequest(http.MethodGet, path, nil) }

func doPostJSON(path string, payload interface{}) ([]byte, error) {
	return doRequest(http.MethodPost, path, payload)
}

func doDelete(path string) ([]byte, error) { return doRequest(http.MethodDelete, path, nil) }

func runSearch(query, source string, out io.Writer) error {
	if query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	data, err := doPostJSON("/api/search", map[string]interface{}{
		"query":  query,
		"source": source,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
