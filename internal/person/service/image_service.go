package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"personsdir/internal/audit"
	"personsdir/internal/i18n"
	dErrors "personsdir/pkg/domain-errors"
	"personsdir/pkg/platform/sentinel"
	"personsdir/pkg/requestcontext"
)

// MaxImageSize caps uploads at 2 MiB.
const MaxImageSize = 2 << 20

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// UploadPersonImage stores the photo under the person's deterministic blob
// name and records the serving URL on the person. Re-uploading replaces the
// previous photo.
func (s *Service) UploadPersonImage(ctx context.Context, personID int64, filename string, data []byte) (string, error) {
	if s.images == nil {
		return "", dErrors.New(dErrors.CodeInternal, "image storage is not configured")
	}
	if len(data) == 0 {
		return "", dErrors.NewKeyed(dErrors.CodeValidation, i18n.NoFileIsSelected)
	}
	if len(data) > MaxImageSize {
		return "", dErrors.NewKeyed(dErrors.CodeValidation, i18n.FileSizeIsTooLarge)
	}
	contentType, ok := imageContentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", dErrors.NewKeyed(dErrors.CodeValidation, i18n.InvalidFileType)
	}

	p, err := s.persons.FindByID(ctx, personID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.NewKeyed(dErrors.CodeNotFound, i18n.PersonNotFoundByID, personID)
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
	}

	url, err := s.images.Save(ctx, p.ImageName(), contentType, data)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store image")
	}

	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.persons.SetImage(ctx, personID, url); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.NewKeyed(dErrors.CodeNotFound, i18n.PersonNotFoundByID, personID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record image")
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "person image uploaded",
		"person_id", personID,
		"request_id", requestcontext.RequestID(ctx))
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Action:    audit.ActionImageUploaded,
		PersonID:  personID,
	})
	if s.metrics != nil {
		s.metrics.ImagesUploaded.Inc()
	}
	return url, nil
}
