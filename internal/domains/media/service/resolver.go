package service

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"catalog-importer/internal/domains/media/model"
	"catalog-importer/internal/shared/utils"
	"catalog-importer/pkg/httpclient"
)

// maxViewerPageBytes caps how much of a viewer page is read.
const maxViewerPageBytes = 2 << 20

// Resolver turns a catalog media reference into a concrete image URL.
type Resolver struct {
	fetcher httpclient.Fetcher
}

func NewResolver(fetcher httpclient.Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Resolve returns reference itself when it already points at an image,
// otherwise the src of the first <iframe> of the page behind reference.
// One attempt, no retries.
func (r *Resolver) Resolve(ctx context.Context, reference string) (string, error) {
	ref := utils.SanitizeURL(reference)
	if ref == "" {
		return "", model.ErrEmptyReference
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrEmptyReference, err)
	}
	if model.HasImageExtension(u.Path) {
		return ref, nil
	}

	resp, err := r.fetcher.Get(ctx, ref, maxViewerPageBytes)
	if err != nil {
		log.Warn().Err(err).Str("url", ref).Msg("Failed to fetch viewer page")
		return "", fmt.Errorf("%w: %v", model.ErrPageUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().Int("status", resp.StatusCode).Str("url", ref).Msg("Viewer page returned an error")
		return "", fmt.Errorf("%w: status %d", model.ErrPageUnreachable, resp.StatusCode)
	}

	if strings.HasPrefix(strings.ToLower(resp.ContentType), "image/") {
		return ref, nil
	}

	src, err := firstIframeSrc(resp.Body)
	if err != nil {
		return "", err
	}

	base := u
	if resp.FinalURL != "" {
		if fu, err := url.Parse(resp.FinalURL); err == nil {
			base = fu
		}
	}
	target, err := base.Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: bad iframe src %q", model.ErrNoViewer, src)
	}

	resolved := utils.SanitizeURL(target.String())
	if resolved == "" {
		return "", fmt.Errorf("%w: unsupported iframe src %q", model.ErrNoViewer, src)
	}
	return resolved, nil
}

func firstIframeSrc(body []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrNoViewer, err)
	}

	var src string
	var found bool
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "iframe" {
			found = true
			for _, a := range n.Attr {
				if a.Key == "src" {
					src = strings.TrimSpace(a.Val)
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if !found {
		return "", fmt.Errorf("%w: no iframe found", model.ErrNoViewer)
	}
	if src == "" {
		return "", fmt.Errorf("%w: iframe has no src", model.ErrNoViewer)
	}
	return src, nil
}
