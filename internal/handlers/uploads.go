package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/storage"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing; larger
// parts spill to temporary files.
const maxUploadMemory = 32 << 20

// formFile opens a multipart file field. A missing field is not an error; the
// boolean reports whether the field was present.
func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, bool, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, false, nil
		}
		return nil, nil, false, err
	}
	return file, header, true, nil
}

// saveFormFile streams an uploaded file into the blob store under a fresh key
// derived from the asset kind and the original file extension.
func saveFormFile(ctx context.Context, blobs storage.BlobStore, file multipart.File, header *multipart.FileHeader, kind string) (storage.SavedObject, error) {
	return blobs.Save(ctx, assetKey(kind, header.Filename), file)
}

func assetKey(kind, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return kind + "/" + uuid.NewString() + ext
}
