package database

import "errors"

var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail аккаунт с таким email уже существует.
	ErrDuplicateEmail = errors.New("account with this email already exists")

	// ErrRoomBusy комната уже занята на пересекающийся интервал.
	ErrRoomBusy = errors.New("room is already booked for this interval")
)
