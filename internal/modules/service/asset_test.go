package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	mq "github.com/buildvault/bimlibrary/internal/infra/queue"
	"github.com/buildvault/bimlibrary/internal/modules/model"
	"github.com/buildvault/bimlibrary/internal/modules/repo"
	"github.com/buildvault/bimlibrary/internal/pkg/apperr"
)

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

func TestAssetService_Move(t *testing.T) {
	tenantID := uuid.New()
	actorID := uuid.New()
	assetID := uuid.New()
	oldCompanyID := uuid.New()
	newCompanyID := uuid.New()
	newProjectID := uuid.New()
	newDisciplineID := uuid.New()

	newProject := &model.Project{ID: newProjectID, TenantID: tenantID, CompanyID: newCompanyID}
	newDiscipline := &model.Discipline{ID: newDisciplineID, TenantID: tenantID, Code: "MEP"}

	tests := []struct {
		name         string
		input        MoveInput
		setup        func(*MockAssetRepo, *MockReferenceRepo)
		expectError  bool
		expectedKind apperr.Kind
		expectNoMove bool
		check        func(*testing.T, *model.Asset)
	}{
		{
			name: "move to new project and discipline",
			input: MoveInput{
				TenantID: tenantID, ActorID: actorID, AssetID: assetID,
				ProjectID: uuidPtr(newProjectID), DisciplineID: uuidPtr(newDisciplineID),
			},
			setup: func(assets *MockAssetRepo, refs *MockReferenceRepo) {
				moved := &model.Asset{
					ID: assetID, TenantID: tenantID,
					ProjectID: newProjectID, DisciplineID: newDisciplineID, CompanyID: newCompanyID,
					Version: 3,
				}
				refs.On("GetProject", mock.Anything, tenantID, newProjectID).Return(newProject, nil)
				refs.On("GetDiscipline", mock.Anything, tenantID, newDisciplineID).Return(newDiscipline, nil)
				assets.On("Move", mock.Anything, tenantID, assetID, mock.MatchedBy(func(mv repo.MoveUpdate) bool {
					return mv.ProjectID != nil && *mv.ProjectID == newProjectID &&
						mv.CompanyID != nil && *mv.CompanyID == newCompanyID &&
						mv.DisciplineID != nil && *mv.DisciplineID == newDisciplineID &&
						mv.UpdatedBy == actorID
				})).Return(moved, nil)
			},
			check: func(t *testing.T, asset *model.Asset) {
				assert.Equal(t, newProjectID, asset.ProjectID)
				assert.Equal(t, newCompanyID, asset.CompanyID)
				assert.Equal(t, 3, asset.Version)
			},
		},
		{
			name: "move between disciplines only",
			input: MoveInput{
				TenantID: tenantID, ActorID: actorID, AssetID: assetID,
				DisciplineID: uuidPtr(newDisciplineID),
			},
			setup: func(assets *MockAssetRepo, refs *MockReferenceRepo) {
				moved := &model.Asset{ID: assetID, TenantID: tenantID, DisciplineID: newDisciplineID, CompanyID: oldCompanyID}
				refs.On("GetDiscipline", mock.Anything, tenantID, newDisciplineID).Return(newDiscipline, nil)
				assets.On("Move", mock.Anything, tenantID, assetID, mock.MatchedBy(func(mv repo.MoveUpdate) bool {
					return mv.ProjectID == nil && mv.CompanyID == nil &&
						mv.DisciplineID != nil && *mv.DisciplineID == newDisciplineID
				})).Return(moved, nil)
			},
			check: func(t *testing.T, asset *model.Asset) {
				assert.Equal(t, oldCompanyID, asset.CompanyID)
			},
		},
		{
			name: "no target given",
			input: MoveInput{
				TenantID: tenantID, ActorID: actorID, AssetID: assetID,
			},
			setup:        func(assets *MockAssetRepo, refs *MockReferenceRepo) {},
			expectError:  true,
			expectedKind: apperr.KindValidation,
			expectNoMove: true,
		},
		{
			name: "target discipline from another tenant",
			input: MoveInput{
				TenantID: tenantID, ActorID: actorID, AssetID: assetID,
				DisciplineID: uuidPtr(newDisciplineID),
			},
			setup: func(assets *MockAssetRepo, refs *MockReferenceRepo) {
				refs.On("GetDiscipline", mock.Anything, tenantID, newDisciplineID).Return(nil, apperr.NotFound("discipline not found"))
			},
			expectError:  true,
			expectedKind: apperr.KindNotFound,
			expectNoMove: true,
		},
		{
			name: "asset from another tenant",
			input: MoveInput{
				TenantID: tenantID, ActorID: actorID, AssetID: assetID,
				DisciplineID: uuidPtr(newDisciplineID),
			},
			setup: func(assets *MockAssetRepo, refs *MockReferenceRepo) {
				refs.On("GetDiscipline", mock.Anything, tenantID, newDisciplineID).Return(newDiscipline, nil)
				assets.On("Move", mock.Anything, tenantID, assetID, mock.Anything).Return(nil, apperr.NotFound("asset not found"))
			},
			expectError:  true,
			expectedKind: apperr.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAssets := &MockAssetRepo{}
			mockRefs := &MockReferenceRepo{}
			mockEvents := &MockPublisher{}
			tt.setup(mockAssets, mockRefs)

			if !tt.expectError {
				mockEvents.On("PublishAssetEvent", mock.Anything, mock.MatchedBy(func(ev mq.AssetEvent) bool {
					return ev.Type == mq.EventAssetMoved
				})).Return(nil)
			}

			svc := NewAssetService(mockAssets, mockRefs, mockEvents, zap.NewNop())

			asset, err := svc.Move(context.Background(), tt.input)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, asset)
				assert.True(t, apperr.IsKind(err, tt.expectedKind), "expected kind %s, got %v", tt.expectedKind, err)
				if tt.expectNoMove {
					mockAssets.AssertNotCalled(t, "Move", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				}
			} else {
				assert.NoError(t, err)
				tt.check(t, asset)
			}

			mockAssets.AssertExpectations(t)
			mockRefs.AssertExpectations(t)
			mockEvents.AssertExpectations(t)
		})
	}
}

func TestAssetService_SoftDeleteAndRestore(t *testing.T) {
	tenantID := uuid.New()
	actorID := uuid.New()
	assetID := uuid.New()
	asset := &model.Asset{ID: assetID, TenantID: tenantID}

	tests := []struct {
		name         string
		run          func(AssetService) error
		setup        func(*MockAssetRepo, *MockPublisher)
		expectError  bool
		expectedKind apperr.Kind
	}{
		{
			name: "soft delete",
			run: func(svc AssetService) error {
				return svc.SoftDelete(context.Background(), tenantID, actorID, assetID)
			},
			setup: func(assets *MockAssetRepo, events *MockPublisher) {
				assets.On("SetTrashed", mock.Anything, tenantID, assetID, actorID, true).Return(nil)
				assets.On("GetByID", mock.Anything, tenantID, assetID).Return(asset, nil)
				events.On("PublishAssetEvent", mock.Anything, mock.MatchedBy(func(ev mq.AssetEvent) bool {
					return ev.Type == mq.EventAssetTrashed
				})).Return(nil)
			},
		},
		{
			name: "restore",
			run: func(svc AssetService) error {
				return svc.Restore(context.Background(), tenantID, actorID, assetID)
			},
			setup: func(assets *MockAssetRepo, events *MockPublisher) {
				assets.On("SetTrashed", mock.Anything, tenantID, assetID, actorID, false).Return(nil)
				assets.On("GetByID", mock.Anything, tenantID, assetID).Return(asset, nil)
				events.On("PublishAssetEvent", mock.Anything, mock.MatchedBy(func(ev mq.AssetEvent) bool {
					return ev.Type == mq.EventAssetRestored
				})).Return(nil)
			},
		},
		{
			name: "delete asset from another tenant",
			run: func(svc AssetService) error {
				return svc.SoftDelete(context.Background(), tenantID, actorID, assetID)
			},
			setup: func(assets *MockAssetRepo, events *MockPublisher) {
				assets.On("SetTrashed", mock.Anything, tenantID, assetID, actorID, true).Return(apperr.NotFound("asset not found"))
			},
			expectError:  true,
			expectedKind: apperr.KindNotFound,
		},
		{
			name: "missing asset id",
			run: func(svc AssetService) error {
				return svc.SoftDelete(context.Background(), tenantID, actorID, uuid.Nil)
			},
			setup:        func(assets *MockAssetRepo, events *MockPublisher) {},
			expectError:  true,
			expectedKind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAssets := &MockAssetRepo{}
			mockEvents := &MockPublisher{}
			tt.setup(mockAssets, mockEvents)

			svc := NewAssetService(mockAssets, &MockReferenceRepo{}, mockEvents, zap.NewNop())

			err := tt.run(svc)

			if tt.expectError {
				assert.Error(t, err)
				assert.True(t, apperr.IsKind(err, tt.expectedKind), "expected kind %s, got %v", tt.expectedKind, err)
			} else {
				assert.NoError(t, err)
			}

			mockAssets.AssertExpectations(t)
			mockEvents.AssertExpectations(t)
		})
	}
}
