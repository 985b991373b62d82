package http

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/webike_maintenance_microservice/internal/adapter/logger"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

func TestJWTTokenService_VerifyToken(t *testing.T) {
	svc := NewJWTTokenService(testSecret, logger.NewNopLogger())

	tests := []struct {
		name     string
		token    func(t *testing.T) string
		wantUser string
		wantRole domain.UserRole
		wantErr  bool
	}{
		{
			name:     "role defaults to appuser",
			token:    func(t *testing.T) string { return signToken(t, jwt.MapClaims{"user_id": "user-1"}) },
			wantUser: "user-1",
			wantRole: domain.AppUser,
		},
		{
			name:     "admin role",
			token:    func(t *testing.T) string { return signToken(t, jwt.MapClaims{"user_id": "ops", "role": "admin"}) },
			wantUser: "ops",
			wantRole: domain.Admin,
		},
		{
			name:    "unknown role",
			token:   func(t *testing.T) string { return signToken(t, jwt.MapClaims{"user_id": "u", "role": "root"}) },
			wantErr: true,
		},
		{
			name:    "missing user_id",
			token:   func(t *testing.T) string { return signToken(t, jwt.MapClaims{"role": "admin"}) },
			wantErr: true,
		},
		{
			name:    "numeric user_id",
			token:   func(t *testing.T) string { return signToken(t, jwt.MapClaims{"user_id": 42}) },
			wantErr: true,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				return signToken(t, jwt.MapClaims{"user_id": "u", "exp": 1})
			},
			wantErr: true,
		},
		{
			name: "other hmac algorithm",
			token: func(t *testing.T) string {
				tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"user_id": "u"}).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return tok
			},
			wantErr: true,
		},
		{
			name: "unsigned",
			token: func(t *testing.T) string {
				tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "u"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return tok
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := svc.VerifyToken(tt.token(t))

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, payload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, payload.UserID)
			assert.Equal(t, tt.wantRole, payload.Role)
		})
	}
}
