package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
)

// Uploads writes multipart files to a temp directory before they are
// handed to the media store, which removes them afterwards.
type Uploads struct{ Dir string }

// Save stores the file of form field name and returns its local path, or
// "" when the field is absent.
func (u Uploads) Save(c echo.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", apperror.Validation("Invalid "+field+" upload", err)
	}
	if err := os.MkdirAll(u.Dir, 0o750); err != nil {
		return "", apperror.Internal("Temporary file storage failed", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", apperror.Internal("Temporary file storage failed", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	path := filepath.Join(u.Dir, uuid.NewString()+ext)
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", apperror.Internal("Temporary file storage failed", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", apperror.Internal("Temporary file storage failed", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", apperror.Internal("Temporary file storage failed", err)
	}
	return path, nil
}

// SaveAll saves several fields; on failure the files saved so far are
// removed.
func (u Uploads) SaveAll(c echo.Context, fields ...string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		p, err := u.Save(c, f)
		if err != nil {
			for _, saved := range out {
				discardTemp(saved)
			}
			return nil, err
		}
		out[f] = p
	}
	return out, nil
}

// formList reads a list form field sent either as a JSON array or as
// repeated values (name or name[]).
func formList(c echo.Context, name string) ([]string, error) {
	var vals []string
	if form, err := c.MultipartForm(); err == nil && form != nil {
		vals = append(append(vals, form.Value[name]...), form.Value[name+"[]"]...)
	} else if params, err := c.FormParams(); err == nil {
		vals = append(append(vals, params[name]...), params[name+"[]"]...)
	}
	if len(vals) == 1 && strings.HasPrefix(strings.TrimSpace(vals[0]), "[") {
		var list []string
		if err := json.Unmarshal([]byte(vals[0]), &list); err != nil {
			return nil, apperror.Validation("Invalid "+name, err)
		}
		vals = list
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func discardTemp(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}
