package auction

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"pacomprar/internal/auctionerrors"
	"pacomprar/internal/authz"
	"pacomprar/internal/models"
	"pacomprar/internal/repository"
)

// Category writes are reserved for admins.
func TestService_CreateCategory(t *testing.T) {
	tests := []struct {
		name          string
		caller        authz.Caller
		catName       string
		mockSetup     func(m *repository.MockAuctionDB)
		expectedError error
	}{
		{
			name:          "anonymous_caller",
			caller:        authz.Caller{},
			catName:       "Electronics",
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrUnauthenticated,
		},
		{
			name:          "non_admin_forbidden",
			caller:        authz.Caller{ID: 3, Authenticated: true},
			catName:       "Electronics",
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrForbidden,
		},
		{
			name:          "empty_name",
			caller:        authz.Caller{ID: 1, IsAdmin: true, Authenticated: true},
			catName:       "",
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:    "admin_allowed",
			caller:  authz.Caller{ID: 1, IsAdmin: true, Authenticated: true},
			catName: "Electronics",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().CreateCategory(gomock.Any()).DoAndReturn(func(cat *models.Category) error {
					cat.ID = 1
					return nil
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockRepo, ctrl := newTestService(t)
			defer ctrl.Finish()
			tt.mockSetup(mockRepo)

			cat, err := service.CreateCategory(tt.caller, tt.catName)
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, uint(1), cat.ID)
			require.Equal(t, "Electronics", cat.Name)
		})
	}
}

func TestService_DeleteCategory_NonAdminForbidden(t *testing.T) {
	service, _, ctrl := newTestService(t)
	defer ctrl.Finish()

	err := service.DeleteCategory(authz.Caller{ID: 3, Authenticated: true}, 1)
	require.ErrorIs(t, err, auctionerrors.ErrForbidden)
}
