package delivery

import (
	"bytes"
	"context"
	"strings"

	deliveryerrors "go-courier/internal/delivery/errors"
	"go-courier/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// BulkUpload ingests an xlsx sheet of deliveries. Expected columns, first
// row being a header: customer name, address, phone, package size. Rows
// with a blank customer or an unknown size are skipped, not rejected, so
// one bad row does not sink the batch.
func (s *service) BulkUpload(ctx context.Context, adminID string, sheet []byte) (BulkUploadResponse, error) {
	if _, err := uuid.Parse(adminID); err != nil {
		return BulkUploadResponse{}, deliveryerrors.ErrMalformedUpload
	}

	f, err := excelize.OpenReader(bytes.NewReader(sheet))
	if err != nil {
		return BulkUploadResponse{}, deliveryerrors.ErrMalformedUpload
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return BulkUploadResponse{}, deliveryerrors.ErrMalformedUpload
	}
	if len(rows) <= 1 {
		return BulkUploadResponse{}, deliveryerrors.ErrEmptyUpload
	}

	adminUUID := uuid.MustParse(adminID)
	deliveries := make([]Delivery, 0, len(rows)-1)
	skipped := 0

	for _, row := range rows[1:] {
		customer := cell(row, 0)
		address := cell(row, 1)
		phone := cell(row, 2)
		size := PackageSize(strings.ToUpper(cell(row, 3)))

		if customer == "" || address == "" || (size != SizeSmall && size != SizeLarge) {
			skipped++
			continue
		}

		d := Delivery{
			ID:           uuid.New(),
			AdminID:      adminUUID,
			CustomerName: customer,
			Address:      address,
			PackageSize:  size,
			Status:       StatusNotPicked,
		}
		if phone != "" {
			p := phone
			d.Phone = &p
		}
		deliveries = append(deliveries, d)
	}

	if len(deliveries) == 0 {
		return BulkUploadResponse{}, deliveryerrors.ErrEmptyUpload
	}

	if err := s.repo.CreateBatch(ctx, deliveries); err != nil {
		return BulkUploadResponse{}, err
	}

	s.logger.Info("deliveries bulk uploaded",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("admin_id", adminID),
		zap.Int("created", len(deliveries)),
		zap.Int("skipped", skipped),
	)

	return BulkUploadResponse{Created: len(deliveries), Skipped: skipped}, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
