package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"academy/config"
	"academy/logger"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const MaxProofSize = 5 * 1024 * 1024

var proofExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".pdf": true,
}

var (
	ErrFileTooLarge     = errors.New("file exceeds 5MB")
	ErrFileTypeNotAllow = errors.New("file type not allowed")
)

// ValidateProofFile checks a payment receipt upload.
func ValidateProofFile(file *multipart.FileHeader) error {
	if file.Size > MaxProofSize {
		return ErrFileTooLarge
	}
	if !proofExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
		return ErrFileTypeNotAllow
	}
	return nil
}

// FileStore persists uploaded files and returns where they can be fetched.
type FileStore interface {
	Save(ctx context.Context, file *multipart.FileHeader, folder string) (string, error)
	Delete(ctx context.Context, path string) error
}

// LocalStore writes under a root directory served as static files.
type LocalStore struct {
	Root string
}

func (s LocalStore) Save(_ context.Context, file *multipart.FileHeader, folder string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	destDir := filepath.Join(s.Root, folder)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	newFilename := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(destDir, newFilename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return filepath.ToSlash(filepath.Join(folder, newFilename)), nil
}

// Delete removes a file returned by Save. A missing file is not an error.
func (s LocalStore) Delete(_ context.Context, path string) error {
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(path)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// CloudinaryStore uploads receipts to Cloudinary.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Save(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	res, err := s.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:       "academy/" + folder,
		PublicID:     uuid.NewString(),
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return res.SecureURL, nil
}

// Delete destroys the asset behind a secure URL returned by Save.
func (s *CloudinaryStore) Delete(ctx context.Context, url string) error {
	publicID := cloudinaryPublicID(url)
	if publicID == "" {
		return fmt.Errorf("cloudinary: no public id in %q", url)
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}

// cloudinaryPublicID recovers "academy/<folder>/<id>" from a delivery URL.
func cloudinaryPublicID(url string) string {
	i := strings.Index(url, "/academy/")
	if i < 0 {
		return ""
	}
	id := url[i+1:]
	return strings.TrimSuffix(id, filepath.Ext(id))
}

// DiscardUpload removes a stored file whose owning record was never written.
func DiscardUpload(ctx context.Context, store FileStore, path string) {
	if err := store.Delete(ctx, path); err != nil {
		logger.Log.Warnw("discarding upload failed", "path", path, "error", err)
	}
}

// NewFileStore picks Cloudinary when CLOUDINARY_URL is set, otherwise local disk.
func NewFileStore() FileStore {
	cfg := config.AppConfig
	if cfg.CloudinaryURL != "" {
		store, err := NewCloudinaryStore(cfg.CloudinaryURL)
		if err == nil {
			return store
		}
		logger.Log.Warnw("cloudinary unavailable, storing uploads locally", "error", err)
	}
	return LocalStore{Root: cfg.UploadDir}
}

// GetFileURL turns a stored path into a URL.
func GetFileURL(filePath string) string {
	if filePath == "" || strings.HasPrefix(filePath, "http") {
		return filePath
	}
	return "/uploads/" + filePath
}
