package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"docrepo/internal/domain"
)

type formField struct {
	name  string
	value string
}

// postMultipart streams fields followed by the file part as the request body.
func (c *Client) postMultipart(ctx context.Context, path string, fields []formField, file *domain.FileUpload, out interface{}) error {
	if file.Open == nil {
		return domain.ErrNoFile
	}
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", file.Name, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer func() { _ = src.Close() }()
		err := writeForm(mw, fields, file, src)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	resp, err := c.do(ctx, http.MethodPost, path, nil, pr, mw.FormDataContentType())
	if err != nil {
		// Unblocks the writer if the request never consumed the body.
		_ = pr.CloseWithError(err)
		return err
	}
	return decode(resp, out)
}

func writeForm(mw *multipart.Writer, fields []formField, file *domain.FileUpload, src io.Reader) error {
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("writing field %s: %w", f.name, err)
		}
	}

	var part io.Writer
	var err error
	if file.ContentType != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.Name)))
		h.Set("Content-Type", file.ContentType)
		part, err = mw.CreatePart(h)
	} else {
		part, err = mw.CreateFormFile("file", file.Name)
	}
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copying file: %w", err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
