package services

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Statement file types.
const (
	FileTypeCSV  = "CSV"
	FileTypeXLSX = "XLSX"
)

// DefaultMaxUploadBytes bounds statement uploads.
const DefaultMaxUploadBytes = 5 << 20

var zipSignature = []byte{0x50, 0x4B, 0x03, 0x04}

var uploadExtensions = map[string]string{
	".csv":  FileTypeCSV,
	".txt":  FileTypeCSV,
	".xlsx": FileTypeXLSX,
}

// Content types browsers send for each type. Excel-associated machines
// label CSV files as vnd.ms-excel.
var uploadContentTypes = map[string][]string{
	FileTypeCSV: {
		"text/csv",
		"text/plain",
		"application/csv",
		"application/vnd.ms-excel",
		"application/octet-stream",
	},
	FileTypeXLSX: {
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/octet-stream",
	},
}

// UploadCheck is the outcome of validating an uploaded statement.
type UploadCheck struct {
	Valid    bool     `json:"valid"`
	FileType string   `json:"fileType"`
	Size     int64    `json:"size"`
	Errors   []string `json:"errors"`
}

// Err joins the validation errors, or returns nil for a valid upload.
func (c *UploadCheck) Err() error {
	if c.Valid {
		return nil
	}
	return errors.New(strings.Join(c.Errors, "; "))
}

// UploadValidator checks statement uploads before they are parsed.
type UploadValidator struct {
	maxBytes int64
}

func NewUploadValidator(maxBytes int64) *UploadValidator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadValidator{maxBytes: maxBytes}
}

// Validate checks the name, declared content type, size and content of an
// upload. The detected type comes from the content, not the extension.
func (v *UploadValidator) Validate(data []byte, filename, contentType string) *UploadCheck {
	check := &UploadCheck{Valid: true, Size: int64(len(data)), Errors: []string{}}
	fail := func(err error) {
		check.Valid = false
		check.Errors = append(check.Errors, err.Error())
	}

	extType, err := v.checkFilename(filename)
	if err != nil {
		fail(err)
	}
	if err := v.checkSize(check.Size); err != nil {
		fail(err)
		return check
	}

	detected, err := DetectFileType(data)
	if err != nil {
		fail(err)
		return check
	}
	check.FileType = detected

	if extType != "" && extType != detected {
		fail(fmt.Errorf("file extension does not match %s content", detected))
	}
	if !contentTypeAllowed(detected, contentType) {
		fail(fmt.Errorf("content type %q does not match %s content", contentType, detected))
	}
	return check
}

func (v *UploadValidator) checkFilename(filename string) (string, error) {
	switch {
	case filename == "":
		return "", errors.New("filename cannot be empty")
	case strings.Contains(filename, ".."):
		return "", errors.New("filename contains path traversal")
	case strings.ContainsRune(filename, 0):
		return "", errors.New("filename contains null bytes")
	case strings.HasPrefix(filename, "/") || strings.HasPrefix(filename, "\\"):
		return "", errors.New("filename cannot be absolute path")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	fileType, ok := uploadExtensions[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file extension: %q", ext)
	}
	return fileType, nil
}

func (v *UploadValidator) checkSize(size int64) error {
	if size == 0 {
		return errors.New("empty file")
	}
	if size > v.maxBytes {
		return fmt.Errorf("file size (%d bytes) exceeds maximum allowed size (%d bytes)", size, v.maxBytes)
	}
	return nil
}

// DetectFileType sniffs a statement's content.
func DetectFileType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty file")
	}
	if bytes.HasPrefix(data, zipSignature) {
		return FileTypeXLSX, nil
	}
	if isText(data) {
		return FileTypeCSV, nil
	}
	return "", errors.New("unsupported file type based on content")
}

func contentTypeAllowed(fileType, contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	for _, allowed := range uploadContentTypes[fileType] {
		if mediaType == allowed {
			return true
		}
	}
	return false
}

// isText reports whether the first 512 bytes look like text. Bytes >= 0x80
// count as text so UTF-8 and Latin-1 accents pass.
func isText(data []byte) bool {
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}

	printable := 0
	for _, b := range sample {
		if b >= 0x20 || b == '\t' || b == '\n' || b == '\r' {
			printable++
		}
	}
	return float64(printable)/float64(len(sample)) > 0.95
}
