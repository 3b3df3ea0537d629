package application

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers unknown identifiers and wrong passwords
	// alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("user is not authorized")
	ErrRefreshExpired     = errors.New("refresh token was expired")
	ErrStorageDisabled    = errors.New("avatar storage is not configured")
	ErrSearchDisabled     = errors.New("channel search is not configured")
)

type UserAlreadyExistsError struct {
	Email    string
	Username string
}

func (e *UserAlreadyExistsError) Error() string {
	return fmt.Sprintf("user with given email(%s) or username(%s) already exists", e.Email, e.Username)
}

type ChannelDoesNotExistError struct {
	ChannelID string
}

func (e *ChannelDoesNotExistError) Error() string {
	return fmt.Sprintf("channel with given id(%s) does not exist", e.ChannelID)
}

type UserAlreadyMemberError struct {
	ChannelID string
	ProfileID string
}

func (e *UserAlreadyMemberError) Error() string {
	return fmt.Sprintf("user(%s) is already a member of channel(%s)", e.ProfileID, e.ChannelID)
}

type UserAlreadyDisconnectedError struct {
	ChannelID string
	ProfileID string
}

func (e *UserAlreadyDisconnectedError) Error() string {
	return fmt.Sprintf("user(%s) is already disconnected from channel(%s)", e.ProfileID, e.ChannelID)
}
