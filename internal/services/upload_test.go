package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var xlsxHeader = []byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00}

func TestUploadValidator_Validate(t *testing.T) {
	v := NewUploadValidator(1024)
	csv := []byte("FECHA;DESCRIPCIÓN;VALOR\n15/01/2024;Abono;1000\n")

	tests := []struct {
		name        string
		data        []byte
		filename    string
		contentType string
		wantValid   bool
		wantType    string
	}{
		{name: "csv", data: csv, filename: "extracto.csv", contentType: "text/csv", wantValid: true, wantType: FileTypeCSV},
		{name: "csv labelled as excel", data: csv, filename: "extracto.csv", contentType: "application/vnd.ms-excel", wantValid: true, wantType: FileTypeCSV},
		{name: "csv with charset", data: csv, filename: "extracto.csv", contentType: "text/csv; charset=utf-8", wantValid: true, wantType: FileTypeCSV},
		{name: "xlsx", data: xlsxHeader, filename: "extracto.xlsx", contentType: XLSXContentType, wantValid: true, wantType: FileTypeXLSX},
		{name: "xlsx content with csv name", data: xlsxHeader, filename: "extracto.csv", contentType: "text/csv", wantValid: false, wantType: FileTypeXLSX},
		{name: "pdf extension", data: csv, filename: "extracto.pdf", contentType: "text/csv", wantValid: false, wantType: FileTypeCSV},
		{name: "path traversal", data: csv, filename: "../extracto.csv", contentType: "text/csv", wantValid: false, wantType: FileTypeCSV},
		{name: "empty", data: nil, filename: "extracto.csv", contentType: "text/csv", wantValid: false},
		{name: "too large", data: make([]byte, 2048), filename: "extracto.csv", contentType: "text/csv", wantValid: false},
		{name: "binary", data: []byte{0x00, 0x01, 0x02, 0x03}, filename: "extracto.csv", contentType: "text/csv", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := v.Validate(tt.data, tt.filename, tt.contentType)
			assert.Equal(t, tt.wantValid, check.Valid, check.Errors)
			assert.Equal(t, tt.wantType, check.FileType)
			if tt.wantValid {
				assert.NoError(t, check.Err())
			} else {
				assert.Error(t, check.Err())
			}
		})
	}
}

func TestDetectFileType(t *testing.T) {
	ft, err := DetectFileType(xlsxHeader)
	assert.NoError(t, err)
	assert.Equal(t, FileTypeXLSX, ft)

	ft, err = DetectFileType([]byte("a,b\n1,2\n"))
	assert.NoError(t, err)
	assert.Equal(t, FileTypeCSV, ft)

	_, err = DetectFileType(nil)
	assert.Error(t, err)
}

func TestNewUploadValidator_DefaultLimit(t *testing.T) {
	v := NewUploadValidator(0)
	assert.Equal(t, int64(DefaultMaxUploadBytes), v.maxBytes)
}
