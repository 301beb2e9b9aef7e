// Package mocks provides mock implementations for testing the fieldops API.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the identity and profile ports. The mocks are generated using go:generate
// directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	verifier := mocks.NewMockTokenVerifier(ctrl)
//	verifier.EXPECT().VerifyToken(gomock.Any(), "token").Return(ident, nil)
package mocks

// Generate mocks for the identity verification and profile storage ports:
// TokenVerifier (VerifyToken), AccountDirectory (AccountEmail), and
// ProfileStore (Get, InsertIfAbsent).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/fieldops/fieldops-api/internal/ports TokenVerifier,AccountDirectory,ProfileStore
