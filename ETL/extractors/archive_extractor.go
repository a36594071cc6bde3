package extractors

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/LilVoxy/fii_analytics/ETL/metrics"
	"github.com/LilVoxy/fii_analytics/ETL/utils"
)

// RetrievalError describes a failed network or extraction step for one archive
type RetrievalError struct {
	Op  string // "list", "fetch" or "extract"
	URL string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// FetchSummary counts the outcome of a FetchAll call
type FetchSummary struct {
	Links   int
	Fetched int
	Failed  int
}

// ArchiveExtractor retrieves the yearly ZIP archives from the CVM index
// and unpacks them into the source directory
type ArchiveExtractor struct {
	baseURL string
	destDir string
	client  *http.Client
	logger  *utils.ETLLogger
	metrics *metrics.Metrics
}

// NewArchiveExtractor creates a new ArchiveExtractor
func NewArchiveExtractor(baseURL, destDir string, client *http.Client, logger *utils.ETLLogger, m *metrics.Metrics) *ArchiveExtractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &ArchiveExtractor{
		baseURL: baseURL,
		destDir: destDir,
		client:  client,
		logger:  logger,
		metrics: m,
	}
}

// ListArchives returns the absolute URLs of every .zip link on the index page
func (e *ArchiveExtractor) ListArchives(ctx context.Context) ([]string, error) {
	base, err := url.Parse(e.baseURL)
	if err != nil {
		return nil, &RetrievalError{Op: "list", URL: e.baseURL, Err: err}
	}

	resp, err := e.get(ctx, e.baseURL)
	if err != nil {
		return nil, &RetrievalError{Op: "list", URL: e.baseURL, Err: err}
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &RetrievalError{Op: "list", URL: e.baseURL, Err: err}
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.HasSuffix(strings.ToLower(href), ".zip") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		link := base.ResolveReference(ref).String()
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})

	e.logger.Info("Found %d archives at %s", len(links), e.baseURL)
	return links, nil
}

// FetchArchive downloads an archive into the destination directory and returns its path.
// An archive that is already present is not downloaded again.
func (e *ArchiveExtractor) FetchArchive(ctx context.Context, link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", &RetrievalError{Op: "fetch", URL: link, Err: err}
	}
	fileName := path.Base(u.Path)
	if fileName == "" || fileName == "/" || fileName == "." {
		return "", &RetrievalError{Op: "fetch", URL: link, Err: errors.New("link has no file name")}
	}
	fullPath := filepath.Join(e.destDir, fileName)

	if _, err := os.Stat(fullPath); err == nil {
		e.logger.Info("Already exists: %s", fileName)
		return fullPath, nil
	}

	if err := os.MkdirAll(e.destDir, 0o755); err != nil {
		return "", &RetrievalError{Op: "fetch", URL: link, Err: err}
	}

	e.logger.Info("Downloading: %s", fileName)
	resp, err := e.get(ctx, link)
	if err != nil {
		return "", &RetrievalError{Op: "fetch", URL: link, Err: err}
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(e.destDir, fileName+".*.part")
	if err != nil {
		return "", &RetrievalError{Op: "fetch", URL: link, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", &RetrievalError{Op: "fetch", URL: link, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", &RetrievalError{Op: "fetch", URL: link, Err: err}
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", &RetrievalError{Op: "fetch", URL: link, Err: err}
	}

	return fullPath, nil
}

// ExtractArchive unpacks every entry of the archive into the destination directory
func (e *ArchiveExtractor) ExtractArchive(zipPath string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return &RetrievalError{Op: "extract", URL: zipPath, Err: err}
	}
	defer reader.Close()

	root, err := filepath.Abs(e.destDir)
	if err != nil {
		return &RetrievalError{Op: "extract", URL: zipPath, Err: err}
	}

	for _, f := range reader.File {
		target := filepath.Join(root, f.Name)
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return &RetrievalError{Op: "extract", URL: zipPath, Err: fmt.Errorf("illegal entry path %q", f.Name)}
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &RetrievalError{Op: "extract", URL: zipPath, Err: err}
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return &RetrievalError{Op: "extract", URL: zipPath, Err: fmt.Errorf("%s: %w", f.Name, err)}
		}
	}

	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// FetchAll lists, downloads and unpacks every archive.
// A failed archive is logged and does not stop the others.
func (e *ArchiveExtractor) FetchAll(ctx context.Context) (FetchSummary, error) {
	var summary FetchSummary

	links, err := e.ListArchives(ctx)
	if err != nil {
		return summary, err
	}
	summary.Links = len(links)

	for i, link := range links {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		e.logger.Debug("[%d/%d] %s", i+1, len(links), link)
		zipPath, err := e.FetchArchive(ctx, link)
		if err == nil {
			err = e.ExtractArchive(zipPath)
		}
		if err != nil {
			e.logger.Error("Retrieval failed: %v", err)
			e.metrics.IncrementArchivesFetched("failed")
			summary.Failed++
			continue
		}

		e.metrics.IncrementArchivesFetched("success")
		summary.Fetched++
	}

	return summary, nil
}

func (e *ArchiveExtractor) get(ctx context.Context, link string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp, nil
}
