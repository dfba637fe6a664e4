package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
)

// FormFile is one file part of a multipart upload
type FormFile struct {
	FieldName string
	FileName  string
	Content   io.Reader
}

// MultipartForm is the body of an UploadFile call
type MultipartForm struct {
	Fields map[string]string
	Files  []FormFile
}

func (f *MultipartForm) AddField(name, value string) *MultipartForm {
	if f.Fields == nil {
		f.Fields = make(map[string]string)
	}
	f.Fields[name] = value
	return f
}

func (f *MultipartForm) AddFile(fieldName, fileName string, content io.Reader) *MultipartForm {
	f.Files = append(f.Files, FormFile{FieldName: fieldName, FileName: fileName, Content: content})
	return f
}

func (f *MultipartForm) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if f != nil {
		names := make([]string, 0, len(f.Fields))
		for name := range f.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := w.WriteField(name, f.Fields[name]); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", name, err)
			}
		}

		for _, file := range f.Files {
			part, err := w.CreateFormFile(file.FieldName, file.FileName)
			if err != nil {
				return nil, "", fmt.Errorf("create part %s: %w", file.FileName, err)
			}
			if file.Content != nil {
				if _, err := io.Copy(part, file.Content); err != nil {
					return nil, "", fmt.Errorf("copy %s: %w", file.FileName, err)
				}
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
