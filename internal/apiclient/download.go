package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"

	"docrepo/internal/domain"
)

// DefaultFilename is used when a download carries no usable filename.
const DefaultFilename = "download"

var filenamePattern = regexp.MustCompile(`(?i)filename="?([^";]+)"?`)

// Download fetches one version of a document, or the latest when ref is
// domain.Latest.
func (c *Client) Download(ctx context.Context, id int64, ref domain.VersionRef) (*domain.Download, error) {
	query := url.Values{"version": {ref.String()}}
	resp, err := c.do(ctx, http.MethodGet, documentPath(id, "/download"), query, nil, "")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.APIError{Kind: domain.KindTransport, Err: fmt.Errorf("reading download body: %w", err)}
	}
	return &domain.Download{
		Filename:    FilenameFromDisposition(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// FilenameFromDisposition extracts the filename parameter from a
// Content-Disposition header value, falling back to DefaultFilename.
func FilenameFromDisposition(header string) string {
	if header == "" {
		return DefaultFilename
	}
	if _, params, err := mime.ParseMediaType(header); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}
	if m := filenamePattern.FindStringSubmatch(header); m != nil && m[1] != "" {
		return m[1]
	}
	return DefaultFilename
}
