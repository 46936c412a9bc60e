package session

import (
	"context"

	"github.com/iliyamo/restaurant-floor-plan/internal/editor"
	"github.com/iliyamo/restaurant-floor-plan/internal/model"
	"github.com/iliyamo/restaurant-floor-plan/internal/repository"
)

// Thin adapters from the repository method names to the lifecycle's
// gateway contracts.

type versionGateway struct{ repo *repository.VersionRepo }

func (g versionGateway) CreateVersion(ctx context.Context, v *model.Version) error {
	return g.repo.Create(ctx, v)
}

func (g versionGateway) GetVersion(ctx context.Context, floorID uint64, number int) (*model.Version, error) {
	return g.repo.GetByNumber(ctx, floorID, number)
}

type approvalGateway struct{ repo *repository.ApprovalRepo }

func (g approvalGateway) CreateApproval(ctx context.Context, req *model.ApprovalRequest) error {
	return g.repo.Create(ctx, req)
}

func (g approvalGateway) UpdateApproval(ctx context.Context, req *model.ApprovalRequest) error {
	return g.repo.Update(ctx, req)
}

type activityGateway struct{ repo *repository.ActivityRepo }

func (g activityGateway) RecordActivity(ctx context.Context, entry *model.ActivityEntry) error {
	return g.repo.Record(ctx, entry)
}

var _ editor.VersionStore = versionGateway{}
var _ editor.ApprovalStore = approvalGateway{}
var _ editor.ActivityRecorder = activityGateway{}
