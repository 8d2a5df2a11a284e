// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dblp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one publication returned by the DBLP search API.
type Record struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Year    int      `json:"year"`
	Venues  []string `json:"venues"`
	Type    string   `json:"type"`
	DOI     string   `json:"doi,omitempty"`

	// EE lists electronic edition links (publisher pages, DOIs, PDFs).
	EE []string `json:"ee,omitempty"`

	// URL is the DBLP record page.
	URL string `json:"url"`
}

// oneOrMany decodes a JSON value that DBLP sends as a single element when
// there is one and as an array when there are several.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*o = nil
		return nil
	case data[0] == '[':
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*o = many
		return nil
	default:
		var one T
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*o = []T{one}
		return nil
	}
}

type searchResponse struct {
	Result struct {
		Status struct {
			Code string `json:"@code"`
			Text string `json:"text"`
		} `json:"status"`
		Hits struct {
			Total string         `json:"@total"`
			Hit   oneOrMany[hit] `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

type hit struct {
	Info hitInfo `json:"info"`
}

type hitInfo struct {
	Authors struct {
		Author oneOrMany[hitAuthor] `json:"author"`
	} `json:"authors"`
	Title string            `json:"title"`
	Venue oneOrMany[string] `json:"venue"`
	Year  string            `json:"year"`
	Type  string            `json:"type"`
	Key   string            `json:"key"`
	DOI   string            `json:"doi"`
	EE    oneOrMany[string] `json:"ee"`
	URL   string            `json:"url"`
}

type hitAuthor struct {
	PID  string `json:"@pid"`
	Text string `json:"text"`
}

// UnmarshalJSON accepts a bare string as well as the {"@pid", "text"} form.
func (a *hitAuthor) UnmarshalJSON(data []byte) error {
	if s := bytes.TrimSpace(data); len(s) > 0 && s[0] == '"' {
		return json.Unmarshal(s, &a.Text)
	}
	type plain hitAuthor
	return json.Unmarshal(data, (*plain)(a))
}

// decodeSearch parses a search API response body into records.
func decodeSearch(body []byte) ([]Record, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding DBLP response: %w", err)
	}
	if code := resp.Result.Status.Code; code != "" && code != "200" {
		return nil, fmt.Errorf("DBLP search failed: %s %s", code, resp.Result.Status.Text)
	}

	records := make([]Record, 0, len(resp.Result.Hits.Hit))
	for _, h := range resp.Result.Hits.Hit {
		info := h.Info
		year, _ := strconv.Atoi(strings.TrimSpace(info.Year))
		rec := Record{
			Key:    info.Key,
			Title:  strings.TrimSpace(info.Title),
			Year:   year,
			Venues: []string(info.Venue),
			Type:   info.Type,
			DOI:    info.DOI,
			EE:     []string(info.EE),
			URL:    info.URL,
		}
		for _, a := range info.Authors.Author {
			if name := strings.TrimSpace(a.Text); name != "" {
				rec.Authors = append(rec.Authors, name)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
