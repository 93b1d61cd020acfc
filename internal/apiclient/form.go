package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
)

// Form is a multipart request body.
type Form struct {
	Fields map[string]string
	Files  []FormFile
}

type FormFile struct {
	Field    string
	Filename string
	Content  []byte
}

type encodedBody struct {
	data        []byte
	contentType string
}

// encodeBody renders the body once so a replay after refresh sends identical bytes.
// Multipart bodies take their Content-Type, boundary included, from the writer.
func encodeBody(body any) (*encodedBody, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case *Form:
		return encodeForm(b)
	case Form:
		return encodeForm(&b)
	case []byte:
		return &encodedBody{data: b, contentType: "application/json"}, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		return &encodedBody{data: data, contentType: "application/json"}, nil
	}
}

func encodeForm(f *Form) (*encodedBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range f.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, file := range f.Files {
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, fmt.Errorf("create form file %s: %w", file.Field, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, fmt.Errorf("write form file %s: %w", file.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return &encodedBody{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}
