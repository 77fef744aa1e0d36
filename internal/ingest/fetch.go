package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-git/go-git/v5"
)

// httpClient is shared across fetches, mirroring
// local-kb-index-builder/fetch_docs.go's package-level client.
var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// Source describes one remote corpus source to fetch before indexing,
// grounded on local-kb-index-builder/download.go's Source struct.
type Source struct {
	Name           string   `json:"name"`
	Extract        string   `json:"extract"`
	Type           string   `json:"type"`
	ExcludePattern string   `json:"exclude_pattern,omitempty"`
	Dir            string   `json:"dir,omitempty"`
	URLs           []string `json:"urls"`
}

// FetchSource dispatches a single Source to its webpage crawler or git-repo
// fetcher, writing extracted files under targetDir. Unlike the teacher's
// processSource, this returns the error instead of only logging it, so a
// caller driving a batch ingest can decide whether to continue.
func FetchSource(source Source, targetDir string) error {
	switch source.Type {
	case "webpage":
		return downloadWebsites(&source, targetDir)
	case "git_repo":
		var firstErr error
		for _, u := range source.URLs {
			repoDir := filepath.Join(targetDir, source.Dir)
			if err := fetchRepository(u, repoDir); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("ingest: fetch repo %s: %w", u, err)
			}
		}
		return firstErr
	default:
		return fmt.Errorf("ingest: unsupported source type %q", source.Type)
	}
}

func downloadFile(fileURL, targetDir string) (string, error) {
	resp, err := httpClient.Get(fileURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	fileName := filepath.Base(fileURL)
	filePath := filepath.Join(targetDir, fileName)

	out, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", err
	}
	return filePath, nil
}

func unzip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		fpath := filepath.Join(dest, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, os.ModePerm); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
			return err
		}

		outFile, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			outFile.Close()
			return err
		}
		_, copyErr := io.Copy(outFile, rc)
		outFile.Close()
		rc.Close()
		if copyErr != nil {
			return copyErr
		}
	}
	return nil
}

// fetchRepository clones a git remote, or downloads and extracts a zip
// archive when repoURL ends in .zip (local-kb-index-builder/fetch_docs.go's
// fetchRepository).
func fetchRepository(repoURL, targetDir string) error {
	if strings.HasSuffix(repoURL, ".zip") {
		tmpDir, err := os.MkdirTemp("", "ingest-zip-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmpDir)

		zipPath, err := downloadFile(repoURL, tmpDir)
		if err != nil {
			return fmt.Errorf("download archive: %w", err)
		}
		if err := unzip(zipPath, targetDir); err != nil {
			return fmt.Errorf("extract archive: %w", err)
		}
		return nil
	}

	_, err := git.PlainClone(targetDir, false, &git.CloneOptions{
		URL: repoURL,
	})
	if err != nil {
		return fmt.Errorf("clone repo: %w", err)
	}
	return nil
}

func linkToFileName(link, prefix string) string {
	trimmed := strings.TrimPrefix(link, prefix)
	return strings.ReplaceAll(trimmed, "/", "_") + ".md"
}

// convertToMarkdown extracts the first match of element from htmlContent
// and converts it to markdown (fetch_docs.go's convertToMarkdown).
func convertToMarkdown(htmlContent io.Reader, element string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(htmlContent)
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)

	var markdownContent string
	doc.Find(element).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		html, err := s.Html()
		if err != nil {
			return true
		}
		markdown, err := converter.ConvertString(html)
		if err != nil {
			return true
		}
		markdownContent = markdown
		return false
	})
	return markdownContent, nil
}

// downloadWebsites runs a breadth-first crawl of source.URLs, writing each
// fetched page's extracted element as markdown under extractToDir/Dir, and
// following only links whose absolute form is prefixed by one of the seed
// URLs (fetch_docs.go's downloadWebsites).
func downloadWebsites(source *Source, extractToDir string) error {
	if len(source.URLs) == 0 {
		return errors.New("ingest: source has no urls")
	}
	if source.Extract == "" {
		return errors.New("ingest: source has no extract selector")
	}

	var excludePattern *regexp.Regexp
	if source.ExcludePattern != "" {
		excludePattern, _ = regexp.Compile(source.ExcludePattern)
	}

	path := filepath.Join(extractToDir, source.Dir)
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}

	queue := append([]string{}, source.URLs...)
	fetched := make(map[string]bool)
	queued := make(map[string]bool)
	for _, u := range source.URLs {
		queued[u] = true
	}

	for len(queue) > 0 {
		currentURL := queue[0]
		queue = queue[1:]

		u, err := url.Parse(currentURL)
		if err != nil {
			log.Printf("ingest: skipping unparseable url %s: %v", currentURL, err)
			continue
		}
		u.Fragment = ""
		currentURLBase := u.String()

		if fetched[currentURLBase] {
			continue
		}

		isSeed := false
		for _, seed := range source.URLs {
			if currentURLBase == seed {
				isSeed = true
				break
			}
		}
		if !isSeed && excludePattern != nil && excludePattern.MatchString(currentURLBase) {
			continue
		}

		resp, err := httpClient.Get(currentURLBase)
		if err != nil {
			log.Printf("ingest: fetch %s: %v", currentURLBase, err)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			continue
		}
		fetched[currentURLBase] = true

		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			continue
		}

		markdownContent, err := convertToMarkdown(bytes.NewReader(bodyBytes), source.Extract)
		if err == nil && markdownContent != "" {
			fileName := linkToFileName(currentURLBase, "https://")
			filePath := filepath.Join(path, fileName)
			if err := os.WriteFile(filePath, []byte(markdownContent), 0o644); err != nil {
				log.Printf("ingest: write %s: %v", filePath, err)
			}
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(bodyBytes))
		if err != nil {
			continue
		}
		baseURL, err := url.Parse(currentURLBase)
		if err != nil {
			continue
		}

		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			link, exists := s.Attr("href")
			if !exists {
				return
			}
			absoluteLink, err := baseURL.Parse(link)
			if err != nil {
				return
			}
			absoluteLink.Fragment = ""
			absoluteLinkBase := absoluteLink.String()

			isInternal := false
			for _, seed := range source.URLs {
				if strings.HasPrefix(absoluteLinkBase, seed) {
					isInternal = true
					break
				}
			}
			if isInternal && !queued[absoluteLinkBase] {
				queued[absoluteLinkBase] = true
				queue = append(queue, absoluteLinkBase)
			}
		})
	}
	return nil
}
