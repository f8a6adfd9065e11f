package formdata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrNotMultipart is returned when a body is parsed as multipart/form-data
// but its Content-Type says otherwise.
var ErrNotMultipart = errors.New("formdata: content type is not multipart/form-data")

// ErrMissingBoundary is returned for a multipart Content-Type without a boundary.
var ErrMissingBoundary = errors.New("formdata: multipart boundary missing")

const chunkSize = 32 << 10

// IsMultipart reports whether contentType is multipart/form-data.
func IsMultipart(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "multipart/form-data"
}

// Boundary extracts the multipart boundary from a Content-Type value.
func Boundary(contentType string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		return "", ErrNotMultipart
	}
	boundary := params["boundary"]
	if boundary == "" {
		return "", ErrMissingBoundary
	}
	return boundary, nil
}

// Parse reads a multipart/form-data body into a Form.
//
// Text fields are stored as they are read. Each file part is streamed in
// chunks to its own assembler goroutine, which buffers the bytes and fills
// the entry reserved for it when the part began, so entries keep source
// order. Parse returns only after every assembler has finished.
//
// The first error wins: malformed framing, a failed read, a breached limit
// or a cancelled ctx. Later errors are dropped and no partial form is
// returned.
func Parse(ctx context.Context, body io.Reader, contentType string, limits Limits) (*Form, error) {
	boundary, err := Boundary(contentType)
	if err != nil {
		return nil, err
	}

	p := &parser{limits: limits.withDefaults()}
	return p.parse(ctx, body, boundary)
}

type parser struct {
	limits Limits

	mu  sync.Mutex
	err error
}

// fail records err unless an earlier error was already recorded.
func (p *parser) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

func (p *parser) firstErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *parser) parse(ctx context.Context, body io.Reader, boundary string) (*Form, error) {
	g, gctx := errgroup.WithContext(ctx)
	mr := multipart.NewReader(&countingReader{r: body, max: p.limits.MaxRequestBytes}, boundary)

	form := &Form{}
	parts := 0

	for {
		if err := gctx.Err(); err != nil {
			p.fail(err)
			break
		}

		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.fail(fmt.Errorf("formdata: %w", err))
			break
		}

		parts++
		if parts > p.limits.MaxParts {
			part.Close()
			p.fail(&LimitError{Limit: "parts", Max: int64(p.limits.MaxParts)})
			break
		}

		name := part.FormName()

		if part.FileName() == "" {
			value, err := p.readField(part, name)
			part.Close()
			if err != nil {
				p.fail(err)
				break
			}
			form.entries = append(form.entries, Entry{Name: name, Value: value})
			continue
		}

		mimeType := part.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		file := &File{Filename: part.FileName(), MIMEType: mimeType}
		form.entries = append(form.entries, Entry{Name: name, File: file})

		chunks := make(chan []byte, 4)
		g.Go(func() error {
			return p.assemble(name, file, chunks)
		})

		err = p.stream(gctx, part, chunks)
		close(chunks)
		part.Close()
		if err != nil {
			p.fail(err)
			break
		}
	}

	if err := g.Wait(); err != nil {
		p.fail(err)
	}
	if err := p.firstErr(); err != nil {
		return nil, err
	}
	return form, nil
}

func (p *parser) readField(part io.Reader, name string) (string, error) {
	max := p.limits.MaxFieldBytes
	b, err := io.ReadAll(io.LimitReader(part, max+1))
	if err != nil {
		return "", fmt.Errorf("formdata: reading field %q: %w", name, err)
	}
	if int64(len(b)) > max {
		return "", &LimitError{Limit: "field", Max: max, Part: name}
	}
	return string(b), nil
}

// stream copies a file part into chunks until EOF, a read error or ctx
// cancellation.
func (p *parser) stream(ctx context.Context, part io.Reader, chunks chan<- []byte) error {
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := part.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("formdata: reading file part: %w", err)
		}
	}
}

// assemble buffers one file's chunks and stores the result in file once the
// channel closes.
func (p *parser) assemble(name string, file *File, chunks <-chan []byte) error {
	var buf bytes.Buffer
	for chunk := range chunks {
		if int64(buf.Len()+len(chunk)) > p.limits.MaxFileBytes {
			err := &LimitError{Limit: "file", Max: p.limits.MaxFileBytes, Part: name}
			p.fail(err)
			return err
		}
		buf.Write(chunk)
	}

	file.Data = buf.Bytes()
	if file.Data == nil {
		file.Data = []byte{}
	}
	return nil
}
