package interfaces

import (
	"context"

	"fieldserve/internal/domain/entities"
)

// IJobRepository abstracts DynamoDB persistence for Job.
//
// UpdateStatus is the only way a job's status is written. It performs a
// single conditional write: the update applies only while the persisted
// status still equals expectedPrior, which is the optimistic-concurrency
// check behind the lifecycle controller. On a failed condition (or a
// missing job) it returns an empty Job and no error; the caller re-reads
// to tell the two apart.
//
// The fields map carries supplemental capture data and side effects in one
// atomic write with the status. A nil value removes the attribute (used to
// clear the schedule slot).

type IJobRepository interface {
	Create(ctx context.Context, j entities.Job) (entities.Job, error)
	GetByID(ctx context.Context, id string) (entities.Job, error)
	UpdateStatus(ctx context.Context, id string, status entities.JobStatus, fields map[string]any, expectedPrior entities.JobStatus) (entities.Job, error)
	Patch(ctx context.Context, id string, fields map[string]any) (entities.Job, error)
}
