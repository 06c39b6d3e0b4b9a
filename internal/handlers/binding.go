package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
)

// ErrEmptyBody is returned when a write endpoint receives no payload
var ErrEmptyBody = errors.New("request body is required")

// BindNestedOrFlat decodes the JSON body into obj. Clients may wrap the
// payload under key ({"project": {...}}) or send it flat ({...}); a null
// wrapper counts as absent. The body stays readable afterwards.
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	body, err := c.GetRawData()
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	if len(bytes.TrimSpace(body)) == 0 {
		return ErrEmptyBody
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		if nested, ok := envelope[key]; ok && !bytes.Equal(bytes.TrimSpace(nested), []byte("null")) {
			body = nested
		}
	}

	if err := json.Unmarshal(body, obj); err != nil {
		return fmt.Errorf("invalid %s payload: %w", key, err)
	}
	return nil
}
