package fetcher

import (
	"archive/zip"
	"bytes"
	"io"

	"github.com/rotisserie/eris"
)

var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// IsZIP reports whether the payload looks like a ZIP archive.
func IsZIP(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

// IsXLSX reports whether the payload is an OOXML workbook. XLSX files are ZIP
// archives themselves, so this check keeps them out of the unwrap path.
func IsXLSX(data []byte) bool {
	if !IsZIP(data) {
		return false
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range r.File {
		if f.Name == "[Content_Types].xml" {
			return true
		}
	}
	return false
}

// UnzipSingle extracts the contents of a ZIP archive that holds exactly one
// regular file. Roster drops from data vendors usually arrive as one zipped
// CSV; multi-file archives are rejected rather than guessed at.
func UnzipSingle(data []byte) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrap(err, "zip: open archive")
	}

	var files []*zip.File
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			files = append(files, f)
		}
	}
	if len(files) != 1 {
		return nil, eris.Errorf("zip: expected exactly 1 file, got %d", len(files))
	}

	rc, err := files[0].Open()
	if err != nil {
		return nil, eris.Wrapf(err, "zip: open entry %s", files[0].Name)
	}
	defer rc.Close() //nolint:errcheck

	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "zip: read entry %s", files[0].Name)
	}
	return out, nil
}
