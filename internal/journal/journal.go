package journal

import (
	"context"

	"rangeProvisioner/internal/model"
)

// Journal defines a sink for successful provisioning records.
type Journal interface {
	RecordProvision(ctx context.Context, record model.ProvisionRecord) error
}
