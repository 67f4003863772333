package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// getProfileAsFile resolves a profile URI to a local file.
//   - Input without "://" is a local path (relative or absolute).
//   - file:// URIs use their path directly.
//   - http:// and https:// URIs are downloaded to a temporary file.
//
// The returned cleanup removes any temporary file and is always non-nil on success.
func getProfileAsFile(ctx context.Context, logger zerolog.Logger, uriStr string) (filePath string, cleanup func(), err error) {
	cleanup = func() {}

	if !strings.Contains(uriStr, "://") {
		absPath, err := filepath.Abs(uriStr)
		if err != nil {
			return "", nil, fmt.Errorf("failed to get absolute path for '%s': %w", uriStr, err)
		}
		logger.Debug().Str("path", absPath).Msg("using local profile path")
		return absPath, cleanup, nil
	}

	parsedURI, err := url.Parse(uriStr)
	if err != nil {
		return "", nil, fmt.Errorf("invalid profile URI '%s': %w", uriStr, err)
	}

	switch parsedURI.Scheme {
	case "file":
		filePath = parsedURI.Path
		if filePath == "" {
			return "", nil, fmt.Errorf("invalid file path derived from URI '%s'", uriStr)
		}
		logger.Debug().Str("path", filePath).Msg("using local profile file")
		return filePath, cleanup, nil

	case "http", "https":
		logger.Info().Str("url", uriStr).Msg("downloading profile")
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uriStr, nil)
		if err != nil {
			return "", nil, fmt.Errorf("failed to build request for '%s': %w", uriStr, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", nil, fmt.Errorf("failed to download profile from '%s': %w", uriStr, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", nil, fmt.Errorf("failed to download profile from '%s': received status code %d", uriStr, resp.StatusCode)
		}

		tempFile, err := os.CreateTemp("", "pprof-*.pb.gz")
		if err != nil {
			return "", nil, fmt.Errorf("failed to create temporary file for download: %w", err)
		}
		filePath = tempFile.Name()

		cleanup = func() {
			err := os.Remove(filePath)
			if err != nil && !os.IsNotExist(err) {
				logger.Warn().Err(err).Str("path", filePath).Msg("failed to remove temporary file")
			}
		}

		_, err = io.Copy(tempFile, resp.Body)
		closeErr := tempFile.Close()
		if err != nil {
			cleanup()
			return "", nil, fmt.Errorf("failed to write downloaded content to temporary file '%s': %w", filePath, err)
		}
		if closeErr != nil {
			logger.Warn().Err(closeErr).Str("path", filePath).Msg("failed to close temporary file")
		}

		logger.Debug().Str("path", filePath).Msg("downloaded profile")
		return filePath, cleanup, nil

	default:
		return "", nil, fmt.Errorf("unsupported URI scheme '%s', only 'file://', 'http://', 'https://', or a plain local path are supported", parsedURI.Scheme)
	}
}
