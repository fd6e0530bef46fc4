package upload

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/bimg"
	"github.com/sikdanlog/sikdan-go/internal/constant"
	"github.com/sikdanlog/sikdan-go/internal/model"
)

var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// TransferUnit is one prepared attachment: the processed payload plus the
// metadata one submission attempt needs.
type TransferUnit struct {
	Data     []byte
	FileName string
	MimeType string
	Size     int64
}

// Factory returns a PayloadFactory that rebuilds the payload reader for
// every attempt.
func (t *TransferUnit) Factory() PayloadFactory {
	return func() (io.Reader, error) {
		return bytes.NewReader(t.Data), nil
	}
}

// PrepareImage validates a selected image and re-encodes it to webp bounded
// by maxW x maxH. Validation failures are terminal; they never consume the
// retry budget.
func PrepareImage(raw []byte, fileName string, declaredType string, maxW int, maxH int) (*TransferUnit, error) {
	if int64(len(raw)) > constant.MAX_FILE_SIZE {
		return nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Image size exceeded %dMB limit", constant.MAX_FILE_SIZE/(1024*1024)),
			Param:   "image",
		}
	}

	if !AllowedImageTypes[declaredType] {
		return nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Invalid file type: %s. allowed types: jpeg, jpg, png, gif, webp", declaredType),
			Param:   "image",
		}
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	validExts := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	if !validExts[ext] {
		return nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Invalid file extension: %s", ext),
			Param:   "image",
		}
	}

	output, err := bimg.NewImage(raw).Process(bimg.Options{
		Width:   maxW,
		Height:  maxH,
		Quality: 75,
		Type:    bimg.WEBP,
		Crop:    true,
		Embed:   false,
		Force:   true,
	})
	if err != nil {
		return nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Failed to process image. File may be corrupted or not a valid image",
			Param:   "image",
		}
	}

	return &TransferUnit{
		Data:     output,
		FileName: strings.TrimSuffix(fileName, ext) + ".webp",
		MimeType: "image/webp",
		Size:     int64(len(output)),
	}, nil
}

// NewJob packages a prepared transfer unit into a fresh job with an empty
// attempt counter.
func NewJob(endpoint string, monthTag string, unit *TransferUnit) *model.UploadJob {
	return &model.UploadJob{
		Id:        uuid.New(),
		Endpoint:  endpoint,
		MonthTag:  monthTag,
		FieldName: "image",
		FileName:  unit.FileName,
		MimeType:  unit.MimeType,
		Size:      unit.Size,
		Status:    model.UploadPending,
	}
}
