package storage

import "curveOps/internal/model"

// TransferSink receives batches of scanned transfers.
type TransferSink interface {
	PutTransfers(records []model.TransferRecord) error
}
