package command

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/domain/entity"
	"github.com/oksasatya/communet/internal/domain/event"
	"github.com/oksasatya/communet/internal/domain/repository"
	"github.com/oksasatya/communet/internal/domain/values"
)

type RegisterCommand struct {
	DisplayName string
	Username    string
	Email       string
	Password    string
	Avatar      string
}

type RegisterHandler struct {
	Tx     repository.Transactor
	Events application.EventPublisher
	Logger *logrus.Logger
}

func NewRegisterHandler(tx repository.Transactor, events application.EventPublisher, logger *logrus.Logger) *RegisterHandler {
	return &RegisterHandler{Tx: tx, Events: events, Logger: logger}
}

// Handle creates credentials and profile in one transaction. The unique
// constraints in storage back up the existence check under concurrency.
func (h *RegisterHandler) Handle(ctx context.Context, cmd RegisterCommand) (*entity.Profile, error) {
	exists := &application.UserAlreadyExistsError{Email: cmd.Email, Username: cmd.Username}

	var profile *entity.Profile
	err := h.Tx.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		found, err := uow.Credentials().Exists(ctx, cmd.Email, cmd.Username)
		if err != nil {
			return err
		}
		if found {
			return exists
		}

		creds, err := entity.NewCredentials(cmd.Username, cmd.Email, cmd.Password)
		if err != nil {
			return err
		}
		p, err := entity.NewProfile(cmd.DisplayName, cmd.Avatar, creds)
		if err != nil {
			return err
		}
		if err := uow.Credentials().Create(ctx, creds); err != nil {
			return err
		}
		if err := uow.Profiles().Create(ctx, p); err != nil {
			return err
		}
		profile = p
		return nil
	})
	if errors.Is(err, repository.ErrConflict) {
		return nil, exists
	}
	if err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.WithField("profile_id", profile.OID).Info("user registered")
	}
	publish(ctx, h.Events, h.Logger, event.NewUserRegistered(
		profile.OID,
		profile.Credentials.Username.String(),
		profile.Credentials.Email.String(),
		profile.DisplayName.String(),
	))
	return profile, nil
}

// LoginCommand identifies the user by exactly one of Username or Email.
type LoginCommand struct {
	Username string
	Email    string
	Password string
}

// NewLoginCommand routes identifier to Email when it looks like one.
func NewLoginCommand(identifier, password string) LoginCommand {
	if values.IsEmail(identifier) {
		return LoginCommand{Email: identifier, Password: password}
	}
	return LoginCommand{Username: identifier, Password: password}
}

type LoginHandler struct {
	Tx     repository.Transactor
	Tokens application.TokenIssuer
	Cache  application.Cache
	Logger *logrus.Logger
}

func NewLoginHandler(tx repository.Transactor, tokens application.TokenIssuer, cache application.Cache, logger *logrus.Logger) *LoginHandler {
	return &LoginHandler{Tx: tx, Tokens: tokens, Cache: cache, Logger: logger}
}

func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (entity.AuthData, error) {
	var profileID string
	err := h.Tx.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var (
			creds *entity.Credentials
			err   error
		)
		if cmd.Email != "" {
			creds, err = uow.Credentials().GetByEmail(ctx, cmd.Email)
		} else {
			creds, err = uow.Credentials().GetByUsername(ctx, cmd.Username)
		}
		if err != nil {
			return err
		}
		profile, err := uow.Profiles().GetByCredentialsID(ctx, creds.OID)
		if err != nil {
			return err
		}
		if !creds.Password.Matches(cmd.Password) {
			return application.ErrInvalidCredentials
		}
		profileID = profile.OID
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return entity.AuthData{}, application.ErrInvalidCredentials
	}
	if err != nil {
		return entity.AuthData{}, err
	}
	return issueAndStore(ctx, h.Tokens, h.Cache, profileID)
}

type RefreshTokensCommand struct {
	RefreshToken string
}

type RefreshTokensHandler struct {
	Tokens application.TokenIssuer
	Cache  application.Cache
}

func NewRefreshTokensHandler(tokens application.TokenIssuer, cache application.Cache) *RefreshTokensHandler {
	return &RefreshTokensHandler{Tokens: tokens, Cache: cache}
}

// Handle consumes the refresh token and issues a new pair. A token can be
// used once.
func (h *RefreshTokensHandler) Handle(ctx context.Context, cmd RefreshTokensCommand) (entity.AuthData, error) {
	if cmd.RefreshToken == "" {
		return entity.AuthData{}, application.ErrRefreshExpired
	}
	profileID, ok, err := h.Cache.Pop(ctx, cmd.RefreshToken)
	if err != nil {
		return entity.AuthData{}, err
	}
	if !ok || profileID == "" {
		return entity.AuthData{}, application.ErrRefreshExpired
	}
	return issueAndStore(ctx, h.Tokens, h.Cache, profileID)
}

type RevokeRefreshTokenCommand struct {
	RefreshToken string
}

type RevokeRefreshTokenHandler struct {
	Cache application.Cache
}

func NewRevokeRefreshTokenHandler(cache application.Cache) *RevokeRefreshTokenHandler {
	return &RevokeRefreshTokenHandler{Cache: cache}
}

// Handle reports whether a live token was removed.
func (h *RevokeRefreshTokenHandler) Handle(ctx context.Context, cmd RevokeRefreshTokenCommand) (bool, error) {
	if cmd.RefreshToken == "" {
		return false, nil
	}
	return h.Cache.Delete(ctx, cmd.RefreshToken)
}

type ExtractProfileCommand struct {
	Token string
}

type ExtractProfileHandler struct {
	Tx     repository.Transactor
	Tokens application.TokenIssuer
}

func NewExtractProfileHandler(tx repository.Transactor, tokens application.TokenIssuer) *ExtractProfileHandler {
	return &ExtractProfileHandler{Tx: tx, Tokens: tokens}
}

func (h *ExtractProfileHandler) Handle(ctx context.Context, cmd ExtractProfileCommand) (*entity.Profile, error) {
	profileID, err := h.Tokens.Decode(cmd.Token)
	if err != nil || profileID == "" {
		return nil, application.ErrUnauthorized
	}

	var profile *entity.Profile
	err = h.Tx.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		p, err := uow.Profiles().GetByID(ctx, profileID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, application.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func issueAndStore(ctx context.Context, tokens application.TokenIssuer, cache application.Cache, profileID string) (entity.AuthData, error) {
	data, err := tokens.Issue(profileID)
	if err != nil {
		return entity.AuthData{}, err
	}
	if err := cache.Set(ctx, data.RefreshToken, profileID, data.RefreshExpires); err != nil {
		return entity.AuthData{}, err
	}
	return data, nil
}
