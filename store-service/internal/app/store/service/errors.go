package service

import "errors"

var (
	ErrStoreNotFound = errors.New("store not found")
	ErrNoStoreOwned  = errors.New("no store is assigned to this owner")
	ErrStoreExists   = errors.New("store with this email already exists")
	ErrOwnerHasStore = errors.New("owner already has a store")
	ErrValidation    = errors.New("validation error")
)
