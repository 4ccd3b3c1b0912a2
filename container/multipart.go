package container

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/holmberd/go-formpack/payload"
)

// anonymousFilename names blob parts whose payload carries no filename, the
// same synthetic name form-data gives nameless blobs. A nameless blob that
// crosses a multipart boundary therefore comes back named "blob".
const anonymousFilename = "blob"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// WriteMultipart writes the container to mw as form-data parts, one part per
// entry in insertion order. Textual payloads become ordinary form fields and
// blobs become file parts carrying their content type. A blob without a
// filename is written under the synthetic name "blob", so the empty filename
// does not survive a multipart round trip. The writer is left open so
// callers can append parts of their own before closing it.
func (c *Container) WriteMultipart(mw *multipart.Writer) error {
	for _, e := range c.entries {
		if err := writePart(mw, e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}

func writePart(mw *multipart.Writer, key string, p payload.Payload) error {
	if !p.IsBlob() {
		text, err := p.Text()
		if err != nil {
			return fmt.Errorf("container: read entry %q: %w", key, err)
		}
		if err := mw.WriteField(key, text); err != nil {
			return fmt.Errorf("container: write field %q: %w", key, err)
		}
		return nil
	}

	blob, err := p.Blob()
	if err != nil {
		return fmt.Errorf("container: read entry %q: %w", key, err)
	}
	filename := blob.Filename
	if filename == "" {
		filename = anonymousFilename
	}
	contentType := blob.ContentType
	if contentType == "" {
		contentType = payload.DefaultContentType
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(
		`form-data; name="%s"; filename="%s"`,
		escapeQuotes(key), escapeQuotes(filename),
	))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("container: create file part %q: %w", key, err)
	}
	if _, err := part.Write(blob.Data); err != nil {
		return fmt.Errorf("container: write file part %q: %w", key, err)
	}
	return nil
}

// ReadMultipart parses form-data parts from mr into a container, consuming
// mr until EOF. Parts with a filename become blob payloads, all other parts
// textual payloads. Entry order follows part order. Blobs written without a
// filename arrive named "blob"; see WriteMultipart.
func ReadMultipart(mr *multipart.Reader) (*Container, error) {
	c := New()
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return c, nil
		}
		if err != nil {
			return nil, fmt.Errorf("container: read multipart body: %w", err)
		}
		key := part.FormName()
		data, err := io.ReadAll(part)
		if err != nil {
			return nil, fmt.Errorf("container: read part %q: %w", key, err)
		}
		if filename := part.FileName(); filename != "" {
			contentType := part.Header.Get("Content-Type")
			c.Set(key, payload.FromBlob(payload.NewFileBlob(data, contentType, filename)))
			continue
		}
		c.Set(key, payload.Text(string(data)))
	}
}
