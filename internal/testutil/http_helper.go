// Package testutil provides utility functions for testing HTTP handlers.
package testutil

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// TokenHeader and TokenMarker match the default token transport.
const (
	TokenHeader = "token"
	TokenMarker = "viri__"
)

// MakeJSONRequest is a helper function for making JSON requests in tests.
// An empty authToken sends no token header.
func MakeJSONRequest(body gin.H, authToken string, r *gin.Engine, endpoint string, method string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, endpoint, reader)
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set(TokenHeader, TokenMarker+authToken)
	}

	return Do(r, req)
}

// FormFile is one file part of a multipart request.
type FormFile struct {
	Field    string
	Filename string
	Content  []byte
}

// MakeMultipartRequest sends fields and files as multipart/form-data.
func MakeMultipartRequest(fields map[string]string, files []FormFile, authToken string, r *gin.Engine, endpoint string, method string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	for _, f := range files {
		part, _ := w.CreateFormFile(f.Field, f.Filename)
		_, _ = part.Write(f.Content)
	}
	_ = w.Close()

	req, _ := http.NewRequest(method, endpoint, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if authToken != "" {
		req.Header.Set(TokenHeader, TokenMarker+authToken)
	}

	return Do(r, req)
}

// Do serves a prepared request and decodes the JSON response body.
func Do(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	return rec, resp
}

// Messages extracts the validation messages of an error response.
func Messages(resp map[string]interface{}) []string {
	raw, _ := resp["error"].([]interface{})
	out := make([]string, 0, len(raw))
	for _, m := range raw {
		if s, ok := m.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// PDFContent is a minimal document recognised as application/pdf.
var PDFContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

// StringPtr is a helper function to get a pointer to a string
func StringPtr(s string) *string {
	return &s
}
