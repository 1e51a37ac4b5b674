package models

import "errors"

// ErrInvalidInput: входные данные администратора не прошли валидацию.
var ErrInvalidInput = errors.New("invalid input")
