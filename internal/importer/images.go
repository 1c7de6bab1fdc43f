package importer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/medkadi/boutik-scrap/internal/catalog"
	"github.com/medkadi/boutik-scrap/internal/models"
)

// maxImageBytes caps a downloaded image body; anything larger is rejected.
const maxImageBytes = 4 << 20

// imageURLAliases are the field names probed, in priority order, to find an
// image URL in duck-typed payloads.
var imageURLAliases = []string{"url", "original_url", "source_url", "src"}

var imageExtByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var acceptedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// attachImages parses the record's image list, optionally mirrors the remote
// files into storage, and replaces the product's image rows. A failed
// download is reported to the caller but does not undo the product row or
// the images that did succeed.
func (im *Importer) attachImages(ctx context.Context, product *catalog.Product, raw any, opts Options) error {
	refs := parseImageRefs(raw, product.Name)
	if len(refs) == 0 {
		return nil
	}
	if len(refs) > models.MaxImagesPerProduct {
		refs = refs[:models.MaxImagesPerProduct]
	}

	var rows []catalog.ProductImage
	var failures []error
	for _, ref := range refs {
		finalURL := ref.URL
		if opts.DownloadImages {
			stored, err := im.mirrorImage(ctx, product.Slug, ref)
			if err != nil {
				failures = append(failures, fmt.Errorf("image %s: %w", ref.URL, err))
				continue
			}
			finalURL = stored
		}
		rows = append(rows, catalog.ProductImage{
			URL:       finalURL,
			Alt:       ref.Alt,
			SortOrder: ref.Sort,
		})
	}

	if len(rows) > 0 {
		if err := im.catalog.ReplaceImages(ctx, product.ID, rows); err != nil {
			failures = append(failures, fmt.Errorf("persist images: %w", err))
		}
	}
	return errors.Join(failures...)
}

// parseImageRefs accepts either a list of objects (with aliased URL fields)
// or bare URL strings. Alt falls back to the product name, sort order to the
// list position.
func parseImageRefs(raw any, productName string) []models.ImageRef {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	var refs []models.ImageRef
	for i, item := range items {
		ref := models.ImageRef{Alt: productName, Sort: i}

		switch v := item.(type) {
		case string:
			ref.URL = strings.TrimSpace(v)
		default:
			m := cast.ToStringMap(item)
			if m == nil {
				continue
			}
			for _, alias := range imageURLAliases {
				if u := strings.TrimSpace(cast.ToString(m[alias])); u != "" {
					ref.URL = u
					break
				}
			}
			if alt := strings.TrimSpace(cast.ToString(m["alt"])); alt != "" {
				ref.Alt = alt
			}
			if s, ok := m["sort_order"]; ok && s != nil {
				ref.Sort = cast.ToInt(s)
			}
		}

		if ref.URL == "" {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// mirrorImage downloads one remote image, validates type and size, stores the
// bytes under a collision-resistant name and returns the stored public URL.
func (im *Importer) mirrorImage(ctx context.Context, slug string, ref models.ImageRef) (string, error) {
	resp, err := im.client.R().SetContext(ctx).Get(ref.URL)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("download: status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxImageBytes {
		return "", fmt.Errorf("image too large: %d bytes (max %d)", len(body), maxImageBytes)
	}

	ext, err := imageExtension(resp.Header().Get("Content-Type"), ref.URL)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%d-%s%s", slug, ref.Sort, uuid.NewString()[:6], ext)
	return im.store.Put(ctx, "products/"+name, body)
}

// imageExtension maps the response content type to a file extension, falling
// back to the URL's own extension when the header is missing or unusable.
func imageExtension(contentType, rawURL string) (string, error) {
	ct := contentType
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ext, ok := imageExtByMIME[ct]; ok {
		return ext, nil
	}

	if u, err := url.Parse(rawURL); err == nil {
		ext := strings.ToLower(path.Ext(u.Path))
		if acceptedImageExts[ext] {
			if ext == ".jpeg" {
				ext = ".jpg"
			}
			return ext, nil
		}
	}
	return "", fmt.Errorf("unsupported image type %q", contentType)
}
