package service

import "errors"

var (
	// ErrValidation means the caller's input was rejected before any
	// external call was made.
	ErrValidation = errors.New("invalid input")

	// ErrUpload means the object store rejected or failed an upload.
	ErrUpload = errors.New("photo upload failed")

	// ErrGeneration means the artwork generator failed or timed out.
	ErrGeneration = errors.New("artwork generation failed")

	// ErrPayment means the payment processor declined or failed the charge.
	ErrPayment = errors.New("payment failed")

	// ErrNotFound covers both a missing memory and a memory owned by a
	// different identity, so the existence of other users' records never
	// leaks.
	ErrNotFound = errors.New("memory not found")

	// ErrNotPurchased gates the paid asset: the download endpoint refuses
	// any memory still in pending.
	ErrNotPurchased = errors.New("memory not purchased")
)
