package web

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	imageproc "github.com/yjkogan/stuff-tracker/internal/image"
	"github.com/yjkogan/stuff-tracker/internal/util"
)

const (
	maxUploadSize = 10 << 20
	uploadsPrefix = "/uploads/"
)

type uploadResponse struct {
	URL string `json:"url"`
}

// postUpload stores the "image" field of a multipart form as a JPEG under a
// random name, without its metadata.
func (s *Server) postUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, util.ErrPublic(fmt.Sprintf("missing image: %s", err)))
		return
	}
	defer file.Close()

	buf, err := imageproc.Process(file)
	if err != nil {
		s.writeError(w, err)
		return
	}

	name := uuid.New().String() + ".jpg"
	if err := s.writeUpload(name, buf); err != nil {
		s.writeError(w, err)
		return
	}

	log.Printf("info: stored upload %s for user %s", name, userIDFromRequest(r))
	s.response(w, http.StatusCreated, uploadResponse{URL: uploadsPrefix + name})
}

func (s *Server) writeUpload(name string, buf []byte) error {
	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(s.config.UploadDir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("unable to write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), filepath.Join(s.config.UploadDir, name))
}

// uploadPath returns the on-disk path of a URL returned by postUpload,
// anything else (external URLs, traversal attempts) yields an error.
func (s *Server) uploadPath(url string) (string, error) {
	if !strings.HasPrefix(url, uploadsPrefix) {
		return "", errors.New("not an upload")
	}

	name := strings.TrimPrefix(url, uploadsPrefix)
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid upload name %q", name)
	}

	return filepath.Join(s.config.UploadDir, name), nil
}

// removeUpload deletes an image no item references anymore, failures are
// only logged.
func (s *Server) removeUpload(url string) {
	path, err := s.uploadPath(url)
	if err != nil {
		return
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: unable to remove upload %s: %s", path, err)
	}
}
