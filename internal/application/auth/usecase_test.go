package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger-api/internal/application/auth"
	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger-api/pkg/jwt"
)

const testSecret = "test-secret"

func newAuth(t *testing.T) (*auth.AuthUseCase, *memory.UserRepository) {
	t.Helper()
	users := memory.NewUserRepository(memory.NewStore())
	return auth.NewAuthUseCase(users, auth.JWTConfig{Secret: testSecret, ExpMinutes: 5, Issuer: "test"}), users
}

func TestRegister_RolPorDefectoSeller(t *testing.T) {
	uc, _ := newAuth(t)

	u, err := uc.Register(context.Background(), dto.RegisterRequest{
		Email: "Ana@Example.com", Password: "secreto", FullName: "Ana Pérez",
	})

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, entity.RoleSeller, u.Role)
	assert.True(t, u.IsActive)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	uc, _ := newAuth(t)
	in := dto.RegisterRequest{Email: "ana@example.com", Password: "secreto", FullName: "Ana"}
	_, err := uc.Register(context.Background(), in)
	require.NoError(t, err)

	in.Email = "ANA@example.com"
	_, err = uc.Register(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRegister_Validaciones(t *testing.T) {
	uc, _ := newAuth(t)
	cases := map[string]dto.RegisterRequest{
		"email inválido":  {Email: "ana", Password: "secreto", FullName: "Ana"},
		"password corto":  {Email: "ana@example.com", Password: "123", FullName: "Ana"},
		"nombre corto":    {Email: "ana@example.com", Password: "secreto", FullName: "A"},
		"rol desconocido": {Email: "ana@example.com", Password: "secreto", FullName: "Ana", Role: "root"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Register(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestLogin_GeneraTokenConRol(t *testing.T) {
	uc, _ := newAuth(t)
	u, err := uc.Register(context.Background(), dto.RegisterRequest{
		Email: "bodega@example.com", Password: "secreto", FullName: "Bodeguero", Role: entity.RoleWarehouseKeeper,
	})
	require.NoError(t, err)

	resp, err := uc.Login(context.Background(), dto.LoginRequest{Email: "BODEGA@example.com", Password: "secreto"})

	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	claims, err := jwt.Parse(testSecret, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, entity.RoleWarehouseKeeper, claims.Role)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, _ := newAuth(t)
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "ana@example.com", Password: "secreto", FullName: "Ana"})
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@example.com", Password: "secreto"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, users := newAuth(t)
	u, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "ana@example.com", Password: "secreto", FullName: "Ana"})
	require.NoError(t, err)
	require.NoError(t, users.SetActive(u.ID, false))

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "secreto"})
	assert.ErrorIs(t, err, domain.ErrInactiveUser)

	_, err = uc.Me(context.Background(), u.ID)
	assert.ErrorIs(t, err, domain.ErrInactiveUser)
}

func TestMe(t *testing.T) {
	uc, _ := newAuth(t)
	u, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "ana@example.com", Password: "secreto", FullName: "Ana"})
	require.NoError(t, err)

	me, err := uc.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, me.Email)

	_, err = uc.Me(context.Background(), "borrado")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
