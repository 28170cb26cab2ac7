package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
)

// maxMediaSize is Twitter's limit for image uploads.
const maxMediaSize = 5 * 1024 * 1024

type MediaService interface {
	Upload(ctx context.Context, userID int64, fileName string, data []byte) (*models.MediaAsset, error)
	List(ctx context.Context, userID int64) ([]*models.MediaAsset, error)
	Remove(ctx context.Context, userID, assetID int64) error
}

type mediaService struct {
	ma repository.MediaAssetRepository
	r2 *R2Service
}

func NewMediaService(ma repository.MediaAssetRepository, r2 *R2Service) MediaService {
	return &mediaService{
		ma: ma,
		r2: r2,
	}
}

func (s *mediaService) Upload(ctx context.Context, userID int64, fileName string, data []byte) (*models.MediaAsset, error) {
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	if len(data) > maxMediaSize {
		return nil, errors.New("file too large")
	}

	kind, err := filetype.Match(data)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if !filetype.IsImage(data) && !filetype.IsVideo(data) {
		return nil, errors.New("unsupported file type")
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	key := fmt.Sprintf("media/%d/%s.%s", userID, id, kind.Extension)

	if err := s.r2.Upload(ctx, key, data, kind.MIME.Value); err != nil {
		return nil, err
	}

	asset := &models.MediaAsset{
		UserID:   userID,
		FileName: fileName,
		FileType: kind.MIME.Value,
		FileSize: int64(len(data)),
		FileURL:  s.r2.PublicURL(key),
	}

	assetID, err := s.ma.Create(ctx, asset)
	if err != nil {
		return nil, err
	}
	asset.ID = assetID

	return asset, nil
}

func (s *mediaService) List(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	return s.ma.ListByUserID(ctx, userID)
}

func (s *mediaService) Remove(ctx context.Context, userID, assetID int64) error {
	asset, err := s.ma.GetByID(ctx, assetID)
	if err != nil {
		return err
	}
	if asset == nil || asset.UserID != userID {
		return errors.New("asset not found")
	}

	if key, ok := strings.CutPrefix(asset.FileURL, s.r2.PublicURL("")); ok && key != "" {
		if err := s.r2.Delete(ctx, key); err != nil {
			slog.Info("bucket delete failed", "asset_id", assetID, "error", err)
		}
	}

	return s.ma.Remove(ctx, assetID)
}
