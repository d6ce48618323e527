package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"pacomprar/internal/identity"
	"pacomprar/internal/models"
	"pacomprar/internal/repository"
	user "pacomprar/internal/userService"
)

func newUserRouter(t *testing.T) (*gin.Engine, *repository.MockAuctionDB, *gomock.Controller) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	mockRepo := repository.NewMockAuctionDB(ctrl)
	issuer := identity.NewTokenIssuer("test-secret", "pacomprar", 15*time.Minute, 24*time.Hour)
	svc := user.NewService(mockRepo, issuer, identity.NewMemoryRevoker())
	h := NewUserHandler(svc)

	router := gin.New()
	router.POST("/api/usuarios/register", h.RegisterHandler)
	router.POST("/api/token", h.TokenHandler)
	router.POST("/api/token/refresh", h.TokenRefreshHandler)
	return router, mockRepo, ctrl
}

func postJSON(router *gin.Engine, url string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

// Tests RegisterHandler
func TestRegisterHandler(t *testing.T) {
	valid := RegisterRequest{
		Username:  "ana",
		Email:     "ana@example.com",
		Password:  "sturdy-pass1",
		Password2: "sturdy-pass1",
		BirthDate: "1999-04-23",
	}

	tests := []struct {
		name           string
		mutate         func(*RegisterRequest)
		mockSetup      func(m *repository.MockAuctionDB)
		expectedStatus int
		expectedField  string
	}{
		{
			name:   "success",
			mutate: func(*RegisterRequest) {},
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().CreateUser(gomock.Any()).DoAndReturn(func(u *models.User) error {
					u.ID = 7
					return nil
				})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid_email",
			mutate:         func(r *RegisterRequest) { r.Email = "not-an-email" },
			mockSetup:      func(*repository.MockAuctionDB) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "detail",
		},
		{
			name:           "password_mismatch",
			mutate:         func(r *RegisterRequest) { r.Password2 = "other-pass1" },
			mockSetup:      func(*repository.MockAuctionDB) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "password2",
		},
		{
			name:           "weak_password",
			mutate:         func(r *RegisterRequest) { r.Password, r.Password2 = "letters", "letters" },
			mockSetup:      func(*repository.MockAuctionDB) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "password",
		},
		{
			name:           "bad_birth_date",
			mutate:         func(r *RegisterRequest) { r.BirthDate = "23/04/1999" },
			mockSetup:      func(*repository.MockAuctionDB) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "birth_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockRepo, ctrl := newUserRouter(t)
			defer ctrl.Finish()
			tt.mockSetup(mockRepo)

			req := valid
			tt.mutate(&req)
			rec := postJSON(router, "/api/usuarios/register", req)
			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.expectedField != "" {
				require.Contains(t, body, tt.expectedField)
				return
			}
			require.EqualValues(t, 7, body["id"])
			require.NotContains(t, body, "password")
			require.NotContains(t, body, "password_hash")
		})
	}
}

// Tests the token obtain/refresh endpoints
func TestTokenEndpoints(t *testing.T) {
	hash, err := identity.HashPassword("sturdy-pass1")
	require.NoError(t, err)
	stored := models.User{ID: 7, Username: "ana", PasswordHash: hash}

	t.Run("obtain_and_refresh", func(t *testing.T) {
		router, mockRepo, ctrl := newUserRouter(t)
		defer ctrl.Finish()

		mockRepo.EXPECT().GetUserByUsername("ana").Return(stored, nil)
		mockRepo.EXPECT().GetUserByID(uint(7)).Return(stored, nil)

		rec := postJSON(router, "/api/token", LoginRequest{Username: "ana", Password: "sturdy-pass1"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var pair TokenPairResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
		require.NotEmpty(t, pair.Access)
		require.NotEmpty(t, pair.Refresh)

		rec = postJSON(router, "/api/token/refresh", RefreshRequest{Refresh: pair.Refresh})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		// Replaying the rotated-out refresh token fails.
		rec = postJSON(router, "/api/token/refresh", RefreshRequest{Refresh: pair.Refresh})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong_password", func(t *testing.T) {
		router, mockRepo, ctrl := newUserRouter(t)
		defer ctrl.Finish()

		mockRepo.EXPECT().GetUserByUsername("ana").Return(stored, nil)

		rec := postJSON(router, "/api/token", LoginRequest{Username: "ana", Password: "wrong-pass1"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
