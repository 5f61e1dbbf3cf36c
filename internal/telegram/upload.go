package telegram

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"aurora/internal/services"
)

// File is a local file to upload.
type File struct {
	Path     string
	FileName string
	Caption  string
}

// SendDocument uploads a file as a document.
func (c *Client) SendDocument(ctx context.Context, chatID int64, file File) error {
	return c.sendFile(ctx, "sendDocument", "document", chatID, file, nil)
}

// SendVideo uploads a streamable video.
func (c *Client) SendVideo(ctx context.Context, chatID int64, file File) error {
	return c.sendFile(ctx, "sendVideo", "video", chatID, file, map[string]string{"supports_streaming": "true"})
}

// SendAudio uploads an audio track.
func (c *Client) SendAudio(ctx context.Context, chatID int64, file File) error {
	return c.sendFile(ctx, "sendAudio", "audio", chatID, file, nil)
}

func (c *Client) sendFile(ctx context.Context, method, field string, chatID int64, file File, extra map[string]string) error {
	if _, err := os.Stat(file.Path); err != nil {
		return services.Wrap(services.ErrValidation, "telegram", method, "attachment is not readable", err)
	}
	name := file.FileName
	if name == "" {
		name = filepath.Base(file.Path)
	}
	fields := map[string]string{"chat_id": strconv.FormatInt(chatID, 10)}
	if file.Caption != "" {
		fields["caption"] = file.Caption
	}
	for k, v := range extra {
		fields[k] = v
	}

	return c.policy.Do(ctx, method, classify, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
		defer cancel()

		body, contentType := multipartBody(fields, field, name, file.Path)
		defer body.Close()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), body)
		if err != nil {
			return c.requestError(ctx, method, err)
		}
		req.Header.Set("Content-Type", contentType)
		return c.do(ctx, method, req, nil)
	})
}

// multipartBody streams the form through a pipe so large files are never
// held in memory. Closing the reader stops the writer goroutine.
func multipartBody(fields map[string]string, field, fileName, path string) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeMultipart(mw, fields, field, fileName, path))
	}()
	return pr, mw.FormDataContentType()
}

func writeMultipart(mw *multipart.Writer, fields map[string]string, field, fileName, path string) error {
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile(field, fileName)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	return mw.Close()
}
