// Package fetcher obtains lead rosters from local files, HTTP(S) endpoints,
// and FTP drops, and parses CSV and XLSX payloads into rows.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Options configures the transport used for remote sources.
type Options struct {
	HTTP HTTPOptions
	FTP  FTPOptions
}

// Fetch reads the full contents of a roster source. The location may be a
// local path, an http(s):// URL, or an ftp:// URL. Rosters are bounded CRM
// exports, so the whole payload is buffered — the loader needs the raw bytes
// for fingerprinting before any row is parsed. A payload that turns out to
// be a ZIP archive is unwrapped transparently, except XLSX workbooks, which
// are ZIP containers in their own right.
func Fetch(ctx context.Context, location string, opts Options) ([]byte, error) {
	data, err := fetch(ctx, location, opts)
	if err != nil {
		return nil, err
	}
	if IsZIP(data) && !IsXLSX(data) {
		unzipped, err := UnzipSingle(data)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: unzip %s", location)
		}
		zap.L().Debug("fetcher: unzipped payload",
			zap.String("location", location),
			zap.Int("bytes", len(unzipped)),
		)
		return unzipped, nil
	}
	return data, nil
}

func fetch(ctx context.Context, location string, opts Options) ([]byte, error) {
	switch scheme(location) {
	case "http", "https":
		body, err := NewHTTPFetcher(opts.HTTP).Download(ctx, location)
		if err != nil {
			return nil, err
		}
		defer body.Close() //nolint:errcheck
		return readAll(body, location)
	case "ftp":
		body, err := NewFTPFetcher(opts.FTP).Download(ctx, location)
		if err != nil {
			return nil, err
		}
		defer body.Close() //nolint:errcheck
		return readAll(body, location)
	default:
		path := strings.TrimPrefix(location, "file://")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: read %s", path)
		}
		zap.L().Debug("fetcher: read local file",
			zap.String("path", path),
			zap.Int("bytes", len(data)),
		)
		return data, nil
	}
}

func scheme(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	return u.Scheme
}

func readAll(r io.Reader, location string) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read body of %s", location)
	}
	return data, nil
}
