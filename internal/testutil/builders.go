package testutil

import (
	"encoding/json"

	"github.com/draftforge/discovery-engine/internal/domain/model"
)

// JobRequestBuilder provides a fluent interface for building CreateJobRequest
// values in tests.
type JobRequestBuilder struct {
	req *model.CreateJobRequest
}

// NewJobRequest creates a JobRequestBuilder with sensible defaults.
func NewJobRequest() *JobRequestBuilder {
	return &JobRequestBuilder{
		req: &model.CreateJobRequest{
			OwnerID: "owner-1",
			Title:   "Acme discovery report",
		},
	}
}

// WithOwner sets the owner id.
func (b *JobRequestBuilder) WithOwner(ownerID string) *JobRequestBuilder {
	b.req.OwnerID = ownerID
	return b
}

// WithTitle sets the job title.
func (b *JobRequestBuilder) WithTitle(title string) *JobRequestBuilder {
	b.req.Title = title
	return b
}

// WithEditQuota sets an explicit edit quota.
func (b *JobRequestBuilder) WithEditQuota(quota int) *JobRequestBuilder {
	b.req.EditQuota = quota
	return b
}

// WithLegacyImport marks the request as a legacy import carrying a finished
// report.
func (b *JobRequestBuilder) WithLegacyImport(importID, finalReport string) *JobRequestBuilder {
	b.req.LegacyImportID = &importID
	b.req.FinalReport = &finalReport
	return b
}

// WithMetadata sets the request metadata.
func (b *JobRequestBuilder) WithMetadata(metadata json.RawMessage) *JobRequestBuilder {
	b.req.Metadata = metadata
	return b
}

// WithMetadataString sets the request metadata from a string.
func (b *JobRequestBuilder) WithMetadataString(metadata string) *JobRequestBuilder {
	b.req.Metadata = json.RawMessage(metadata)
	return b
}

// Build returns the constructed CreateJobRequest.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	return b.req
}

// LegacyImportRequest creates a request for a legacy import with a finished
// final report.
func LegacyImportRequest(importID string) *model.CreateJobRequest {
	return NewJobRequest().
		WithTitle("Imported report " + importID).
		WithLegacyImport(importID, "# Imported report\n\nLegacy content.").
		Build()
}
