package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transitrecon/pkg/dataimporter/datasets"
)

var ErrDatasetNotFound = errors.New("dataset could not be found")

// Download retry settings, exported so tests can shorten them
var (
	DownloadMaxRetries     uint64 = 4
	DownloadInitialBackoff        = 500 * time.Millisecond
	DownloadClient                = &http.Client{Timeout: 5 * time.Minute}
)

// Resolve combines inline datasets with the ones registered in a datasources
// directory. Identifiers must be unique across both.
func Resolve(inline []datasets.DataSet, directory string) ([]datasets.DataSet, error) {
	registered, err := GetRegisteredDataSets(directory)
	if err != nil {
		return nil, err
	}

	all := append(append([]datasets.DataSet{}, inline...), registered...)

	seen := map[string]bool{}
	for _, dataset := range all {
		if seen[dataset.Identifier] {
			return nil, fmt.Errorf("dataset %s is defined more than once", dataset.Identifier)
		}
		seen[dataset.Identifier] = true
	}

	return all, nil
}

func GetDataset(registered []datasets.DataSet, identifier string) (datasets.DataSet, error) {
	for _, dataset := range registered {
		if dataset.Identifier == identifier {
			return dataset, nil
		}
	}

	return datasets.DataSet{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, identifier)
}

// OfKind keeps the registered order
func OfKind(registered []datasets.DataSet, kind datasets.DataSetKind) []datasets.DataSet {
	var filtered []datasets.DataSet
	for _, dataset := range registered {
		if dataset.Kind == kind {
			filtered = append(filtered, dataset)
		}
	}

	return filtered
}

// Fetched is a dataset made available on the local filesystem
type Fetched struct {
	Dataset datasets.DataSet
	Path    string

	temporary bool
}

// Cleanup removes the downloaded copy of a remote dataset
func (f *Fetched) Cleanup() {
	if f.temporary {
		os.Remove(f.Path)
	}
}

// Fetch returns a local path for the dataset, downloading URL sources into a
// temporary file first
func Fetch(ctx context.Context, dataset datasets.DataSet) (*Fetched, error) {
	if !isValidUrl(dataset.Source) {
		if _, err := os.Stat(dataset.Source); err != nil {
			return nil, fmt.Errorf("dataset %s: %w", dataset.Identifier, err)
		}

		return &Fetched{Dataset: dataset, Path: dataset.Source}, nil
	}

	log.Info().Str("id", dataset.Identifier).Str("source", dataset.Source).Msg("Downloading dataset")

	path, err := tempDownloadFile(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", dataset.Identifier, err)
	}

	return &Fetched{Dataset: dataset, Path: path, temporary: true}, nil
}

func isValidUrl(toTest string) bool {
	_, err := url.ParseRequestURI(toTest)
	if err != nil {
		return false
	}

	u, err := url.Parse(toTest)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return u.Scheme == "http" || u.Scheme == "https"
}

func tempDownloadFile(ctx context.Context, dataset datasets.DataSet) (string, error) {
	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.InitialInterval = DownloadInitialBackoff

	var path string

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, dataset.Source, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", "curl/7.54.1")
		authenticateRequest(req, dataset.SourceAuthentication)

		resp, err := DownloadClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("download returned %s", resp.Status)
		} else if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("download returned %s", resp.Status))
		}

		fileExtension := filepath.Ext(req.URL.Path)
		if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
			fileExtension = filepath.Ext(params["filename"])
		}

		tmpFile, err := os.CreateTemp(os.TempDir(), "transitrecon-source-*"+fileExtension)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating temporary file: %w", err))
		}
		defer tmpFile.Close()

		if _, err := io.Copy(tmpFile, resp.Body); err != nil {
			os.Remove(tmpFile.Name())
			return err
		}

		path = tmpFile.Name()
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("id", dataset.Identifier).Msgf("Download failed, retrying in %s", wait)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(retryBackoff, DownloadMaxRetries), ctx), notify)
	if err != nil {
		return "", err
	}

	return path, nil
}
