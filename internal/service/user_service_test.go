package service

import (
	"context"
	"testing"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_Validation(t *testing.T) {
	users := new(mockUserStore)
	svc := NewUserService(users, nopLogger())

	_, err := svc.CreateUser(context.Background(), &models.User{Name: "", Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateUser(context.Background(), &models.User{Name: "Ann", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrValidation)

	users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	users := new(mockUserStore)
	users.On("CreateUser", mock.Anything, mock.Anything).Return(database.ErrDuplicateEmail)

	svc := NewUserService(users, nopLogger())
	_, err := svc.CreateUser(context.Background(), &models.User{Name: "Ann", Email: "ann@example.com"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateUser_PartialUpdate(t *testing.T) {
	users := new(mockUserStore)
	users.On("GetUser", mock.Anything, int64(1)).
		Return(&models.User{ID: 1, Name: "Ann", Email: "ann@example.com"}, nil)
	users.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Name == "Ann" && u.Email == "new@example.com"
	})).Return(nil)

	svc := NewUserService(users, nopLogger())
	email := "new@example.com"
	user, err := svc.UpdateUser(context.Background(), 1, models.UserUpdate{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "new@example.com", user.Email)
	users.AssertExpectations(t)
}

func TestGetUser_NotFound(t *testing.T) {
	users := new(mockUserStore)
	users.On("GetUser", mock.Anything, int64(9)).Return(nil, database.ErrNotFound)

	svc := NewUserService(users, nopLogger())
	_, err := svc.GetUser(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}
