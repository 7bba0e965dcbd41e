package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// imageDirName is the subdirectory of the working directory that holds
// downloaded images. The assembled HTML references images relative to the
// working directory, so this name appears in rewritten src attributes.
const imageDirName = "images"

// FetchImage downloads the image at the given absolute URL into the working
// directory's image store and returns its path relative to the working
// directory (e.g. "images/diagram.png").
//
// Images already present on disk are not downloaded again; image dedup is
// by filename, separate from the page visited set. The same politeness
// limiter and proxy apply as for page fetches.
func (f *Fetcher) FetchImage(ctx context.Context, absURL string) (string, error) {
	u, err := url.Parse(absURL)
	if err != nil {
		return "", &Error{Kind: KindParse, URL: absURL, Err: err}
	}

	name := imageFilename(u)
	relPath := path.Join(imageDirName, name)
	localPath := filepath.Join(f.workDir, imageDirName, name)

	if _, err := os.Stat(localPath); err == nil {
		return relPath, nil
	}

	body, err := f.get(ctx, absURL)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(localPath, body, 0600); err != nil {
		return "", &Error{Kind: KindNetwork, URL: absURL, Err: err}
	}

	f.logger.Debug("downloaded image", "url", absURL, "path", relPath)
	return relPath, nil
}

// imageFilename derives a local filename for an image URL.
// URLs without a usable basename get a content-addressed synthetic name so
// distinct images never collide.
func imageFilename(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		sum := sha256.Sum256([]byte(u.String()))
		return "img_" + hex.EncodeToString(sum[:6]) + ".png"
	}
	return name
}
