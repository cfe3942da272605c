package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lms-backend/internal/platform/apierr"
	"github.com/yungbote/lms-backend/internal/platform/media"
	"github.com/yungbote/lms-backend/internal/services"
)

const maxLessonFiles = 10

// formFields holds the scalar fields of a request as strings, whether the
// body was multipart, urlencoded or JSON.
type formFields map[string]string

func (f formFields) get(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

// readFields collects the body fields and up to maxFiles uploads from
// fileField.
func readFields(c *gin.Context, fileField string, maxFiles int) (formFields, []media.File, error) {
	fields := formFields{}

	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, bodyError(err, "Invalid multipart form")
		}
		for k, v := range form.Value {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
		headers := form.File[fileField]
		if len(headers) > maxFiles {
			return nil, nil, apierr.BadRequest(fmt.Sprintf("Too many files: at most %d allowed", maxFiles))
		}
		files := make([]media.File, 0, len(headers))
		for _, fh := range headers {
			files = append(files, media.FileFromMultipart(fh))
		}
		return fields, files, nil

	case gin.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, nil, bodyError(err, "Invalid form body")
		}
		for k, v := range c.Request.PostForm {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
		return fields, nil, nil

	default:
		if c.Request.Body == nil {
			return fields, nil, nil
		}
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(c.Request.Body).Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return fields, nil, nil
			}
			return nil, nil, bodyError(err, "Invalid JSON body")
		}
		for k, v := range raw {
			fields[k] = rawToFormString(v)
		}
		return fields, nil, nil
	}
}

// bodyError reports a body cut off by the request size cap as 413 and any
// other read failure as a BadRequest.
func bodyError(err error, msg string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apierr.TooLarge("Request body too large")
	}
	return apierr.BadRequest(msg)
}

// rawToFormString renders a JSON value the way a form would carry it:
// strings unquoted, everything else as its JSON text.
func rawToFormString(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	t := strings.TrimSpace(string(v))
	if t == "null" {
		return ""
	}
	return t
}

// parseLinksField decodes a JSON encoded list of links. Blank values and
// non-array JSON yield an empty list, and items lacking a url or filename
// are dropped.
func parseLinksField(raw, field string) ([]services.LinkInput, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "[]" {
		return []services.LinkInput{}, nil
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return nil, apierr.BadRequest("Invalid JSON format for " + field)
	}
	items, ok := decoded.([]any)
	if !ok {
		return []services.LinkInput{}, nil
	}
	out := make([]services.LinkInput, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		url, _ := obj["url"].(string)
		name, _ := obj["filename"].(string)
		if strings.TrimSpace(url) == "" || strings.TrimSpace(name) == "" {
			continue
		}
		out = append(out, services.LinkInput{URL: url, Filename: name})
	}
	return out, nil
}

// parseStringListField decodes a JSON encoded list of strings. Non-array
// JSON is treated as absent.
func parseStringListField(raw, field string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return nil, apierr.BadRequest("Invalid JSON format for " + field)
	}
	items, ok := decoded.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out, nil
}

// parseOptionalInt returns nil for empty or non-numeric input.
func parseOptionalInt(raw string) *int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		f, ferr := strconv.ParseFloat(trimmed, 64)
		if ferr != nil {
			return nil
		}
		n = int(f)
	}
	return &n
}

func parseOptionalFloat(raw, field string) (*float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, apierr.BadRequest(field + " must be a number")
	}
	return &f, nil
}

func parseFormBool(raw string) bool {
	return strings.TrimSpace(raw) == "true"
}
