// Package mocks provides mock implementations for testing the discovery engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository
// and provider interfaces. The mocks are generated using go:generate directives and provide
// a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

// Generate mock for JobRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/draftforge/discovery-engine/internal/core JobRepository

// Generate mock for EditRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=edit_repository_mock.go github.com/draftforge/discovery-engine/internal/core EditRepository

// Generate mock for ReportRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=report_repository_mock.go github.com/draftforge/discovery-engine/internal/core ReportRepository

// Generate mock for ActivityRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=activity_repository_mock.go github.com/draftforge/discovery-engine/internal/core ActivityRepository

// Generate mock for DraftStore interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=draft_store_mock.go github.com/draftforge/discovery-engine/internal/core DraftStore

// Generate mock for Provider interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=provider_mock.go github.com/draftforge/discovery-engine/internal/core Provider
