package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/Puzzlebottom/tinyapp/internal/auth"
	"github.com/Puzzlebottom/tinyapp/internal/models"
	"github.com/Puzzlebottom/tinyapp/internal/storage"
)

type AccountServiceTestSuite struct {
	suite.Suite
	errUnknown error
	repoMock   *MockAccountRepository
	svc        *AccountService
}

func (suite *AccountServiceTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *AccountServiceTestSuite) SetupSubTest() {
	suite.repoMock = new(MockAccountRepository)
	suite.svc = NewAccountService(suite.repoMock, bcrypt.MinCost)
}

func (suite *AccountServiceTestSuite) TearDownSubTest() {
	suite.repoMock.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRegister() {
	suite.Run("blank email", func() {
		account, err := suite.svc.Register(context.Background(), "", "secret123")

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidArgument)
		suite.Nil(account)
	})

	suite.Run("blank password", func() {
		account, err := suite.svc.Register(context.Background(), "a@example.com", "")

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidArgument)
		suite.Nil(account)
	})

	suite.Run("invalid email", func() {
		account, err := suite.svc.Register(context.Background(), "not-an-email", "secret123")

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidEmail)
		suite.Nil(account)
	})

	suite.Run("account exists", func() {
		suite.repoMock.
			On("Create", context.Background(), mock.Anything, "a@example.com", mock.Anything).
			Once().
			Return(nil, storage.ErrAccountExists)

		account, err := suite.svc.Register(context.Background(), "a@example.com", "secret123")

		suite.Error(err)
		suite.ErrorIs(err, storage.ErrAccountExists)
		suite.Nil(account)
	})

	suite.Run("success", func() {
		suite.repoMock.
			On("Create", context.Background(), mock.Anything, "a@example.com", mock.Anything).
			Once().
			Return(&models.Account{ID: "account1", Email: "a@example.com"}, nil)

		account, err := suite.svc.Register(context.Background(), "a@example.com", "secret123")

		suite.NoError(err)
		suite.NotNil(account)
		suite.Equal("a@example.com", account.Email)
	})
}

func (suite *AccountServiceTestSuite) TestAuthenticate() {
	hash, err := auth.HashPassword("secret123", bcrypt.MinCost)
	suite.Require().NoError(err)

	suite.Run("unknown email", func() {
		suite.repoMock.
			On("GetByEmail", context.Background(), "a@example.com").
			Once().
			Return(nil, storage.ErrAccountNotFound)

		account, err := suite.svc.Authenticate(context.Background(), "a@example.com", "secret123")

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidCredentials)
		suite.Nil(account)
	})

	suite.Run("wrong password", func() {
		suite.repoMock.
			On("GetByEmail", context.Background(), "a@example.com").
			Once().
			Return(&models.Account{ID: "account1", Email: "a@example.com", PasswordHash: hash}, nil)

		account, err := suite.svc.Authenticate(context.Background(), "a@example.com", "wrong-password")

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidCredentials)
		suite.Nil(account)
	})

	suite.Run("malformed stored hash", func() {
		suite.repoMock.
			On("GetByEmail", context.Background(), "a@example.com").
			Once().
			Return(&models.Account{ID: "account1", Email: "a@example.com", PasswordHash: "garbage"}, nil)

		account, err := suite.svc.Authenticate(context.Background(), "a@example.com", "secret123")

		suite.Error(err)
		suite.ErrorIs(err, auth.ErrHashingFailure)
		suite.Nil(account)
	})

	suite.Run("success", func() {
		suite.repoMock.
			On("GetByEmail", context.Background(), "a@example.com").
			Once().
			Return(&models.Account{ID: "account1", Email: "a@example.com", PasswordHash: hash}, nil)

		account, err := suite.svc.Authenticate(context.Background(), "a@example.com", "secret123")

		suite.NoError(err)
		suite.NotNil(account)
		suite.Equal("account1", account.ID)
	})
}

func (suite *AccountServiceTestSuite) TestFindByEmail() {
	suite.Run("invalid email shape", func() {
		account, err := suite.svc.FindByEmail(context.Background(), "not-an-email")

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidEmail)
		suite.Nil(account)
	})

	suite.Run("absent account", func() {
		suite.repoMock.
			On("GetByEmail", context.Background(), "b@example.com").
			Once().
			Return(nil, storage.ErrAccountNotFound)

		account, err := suite.svc.FindByEmail(context.Background(), "b@example.com")

		suite.Error(err)
		suite.ErrorIs(err, storage.ErrAccountNotFound)
		suite.Nil(account)
	})

	suite.Run("success", func() {
		suite.repoMock.
			On("GetByEmail", context.Background(), "a@example.com").
			Once().
			Return(&models.Account{ID: "account1", Email: "a@example.com"}, nil)

		account, err := suite.svc.FindByEmail(context.Background(), "a@example.com")

		suite.NoError(err)
		suite.NotNil(account)
		suite.Equal("a@example.com", account.Email)
	})
}

func (suite *AccountServiceTestSuite) TestGetByID() {
	suite.Run("unknown id", func() {
		suite.repoMock.
			On("GetByID", context.Background(), "missing").
			Once().
			Return(nil, storage.ErrAccountNotFound)

		account, err := suite.svc.GetByID(context.Background(), "missing")

		suite.Error(err)
		suite.ErrorIs(err, storage.ErrAccountNotFound)
		suite.Nil(account)
	})

	suite.Run("success", func() {
		suite.repoMock.
			On("GetByID", context.Background(), "account1").
			Once().
			Return(&models.Account{ID: "account1", Email: "a@example.com"}, nil)

		account, err := suite.svc.GetByID(context.Background(), "account1")

		suite.NoError(err)
		suite.NotNil(account)
		suite.Equal("account1", account.ID)
	})
}

func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
