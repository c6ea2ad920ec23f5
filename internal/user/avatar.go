package user

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/tarefa360/tarefa360/internal"
)

const (
	AvatarURLPrefix = "/avatars/"
	avatarQuality   = 85
)

// AvatarStore turns an uploaded picture into a square WebP thumbnail on disk.
type AvatarStore struct {
	dir  string
	size int
}

func NewAvatarStore(dir string, size int) *AvatarStore {
	return &AvatarStore{dir: dir, size: size}
}

func (a *AvatarStore) Dir() string {
	return a.dir
}

func decodeImage(data []byte) (image.Image, error) {
	if http.DetectContentType(data) == "image/webp" {
		return webp.Decode(bytes.NewReader(data))
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// Encode decodes r and returns the thumbnail as WebP bytes.
func (a *AvatarStore) Encode(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, internal.NewValidationError("could not read upload", internal.ErrCodeInvalidImage).WithCause(err)
	}

	img, err := decodeImage(data)
	if err != nil {
		return nil, internal.NewValidationError("avatar must be a JPEG, PNG, GIF, BMP, TIFF or WebP image", internal.ErrCodeInvalidImage).WithCause(err)
	}

	thumb := imaging.Fill(img, a.size, a.size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, thumb, &webp.Options{Lossless: false, Quality: avatarQuality}); err != nil {
		return nil, internal.NewInternalError("failed to encode avatar", err)
	}
	return buf.Bytes(), nil
}

// Save writes the thumbnail for userID under a fresh name and returns its public URL. Earlier
// uploads stay on disk until Prune.
func (a *AvatarStore) Save(userID string, r io.Reader) (string, error) {
	if userID == "" || filepath.Base(userID) != userID {
		return "", internal.NewValidationError("invalid user id", internal.ErrCodeValidationFailed)
	}

	encoded, err := a.Encode(r)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", internal.NewInternalError("failed to prepare avatar directory", err)
	}

	name := fmt.Sprintf("%s-%s.webp", userID, uuid.New().String()[:8])
	tmp, err := os.CreateTemp(a.dir, name+".*.tmp")
	if err != nil {
		return "", internal.NewInternalError("failed to store avatar", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return "", internal.NewInternalError("failed to store avatar", err)
	}
	if err := tmp.Close(); err != nil {
		return "", internal.NewInternalError("failed to store avatar", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(a.dir, name)); err != nil {
		return "", internal.NewInternalError("failed to store avatar", err)
	}

	return fmt.Sprintf("%s%s", AvatarURLPrefix, name), nil
}

// Remove deletes the file behind url. A missing file is not an error.
func (a *AvatarStore) Remove(url string) error {
	name := strings.TrimPrefix(url, AvatarURLPrefix)
	if name == "" || filepath.Base(name) != name {
		return internal.NewValidationError("invalid avatar url", internal.ErrCodeValidationFailed)
	}
	if err := os.Remove(filepath.Join(a.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Prune deletes every avatar of userID except the one at keepURL.
func (a *AvatarStore) Prune(userID, keepURL string) error {
	matches, err := filepath.Glob(filepath.Join(a.dir, userID+"-*.webp"))
	if err != nil {
		return err
	}
	keep := strings.TrimPrefix(keepURL, AvatarURLPrefix)
	for _, path := range matches {
		if filepath.Base(path) == keep {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
