package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStatusTransitions(t *testing.T) {
	assert.True(t, DocumentStatusDraft.CanTransitionTo(DocumentStatusSent))
	assert.True(t, DocumentStatusSent.CanTransitionTo(DocumentStatusSigned))
	assert.True(t, DocumentStatusSigned.CanTransitionTo(DocumentStatusArchived))
	assert.False(t, DocumentStatusDraft.CanTransitionTo(DocumentStatusSigned))
	assert.False(t, DocumentStatusSigned.CanTransitionTo(DocumentStatusSigned))
	assert.False(t, DocumentStatusArchived.CanTransitionTo(DocumentStatusSent))
}

func TestInternshipStatusTransitions(t *testing.T) {
	assert.True(t, InternshipStatusActive.CanTransitionTo(InternshipStatusCompleted))
	assert.True(t, InternshipStatusActive.CanTransitionTo(InternshipStatusFailed))
	assert.False(t, InternshipStatusCompleted.CanTransitionTo(InternshipStatusActive))
	assert.False(t, InternshipStatusFailed.CanTransitionTo(InternshipStatusCompleted))
}

func TestParseDocumentType(t *testing.T) {
	tests := []struct {
		in   string
		want DocumentType
	}{
		{"HIRE", DocumentTypeHire},
		{"p1", DocumentTypeHire},
		{"HIRE_ORDER_P1", DocumentTypeHire},
		{"P4", DocumentTypeDismissal},
		{"vacation", DocumentTypeVacation},
		{"INTERNSHIP_REFERRAL", DocumentTypeInternshipReferral},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDocumentType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDocumentType("MEMO")
	assert.Error(t, err)
}

func TestEnumJSONBoundary(t *testing.T) {
	var body struct {
		Type   DocumentType     `json:"type"`
		Status EmploymentStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"P4","status":"звільнений"}`), &body))
	assert.Equal(t, DocumentTypeDismissal, body.Type)
	assert.Equal(t, EmploymentStatusDismissed, body.Status)

	err := json.Unmarshal([]byte(`{"type":"UNKNOWN"}`), &body)
	assert.Error(t, err)
}

func TestEmploymentStatusLabel(t *testing.T) {
	assert.Equal(t, "відпустка", EmploymentStatusOnLeave.Label())
	s, err := ParseEmploymentStatus("активний")
	require.NoError(t, err)
	assert.Equal(t, EmploymentStatusActive, s)
}

func TestEnumScan(t *testing.T) {
	var s DocumentStatus
	require.NoError(t, s.Scan([]byte("signed")))
	assert.Equal(t, DocumentStatusSigned, s)
	assert.Error(t, s.Scan(nil))
	assert.Error(t, s.Scan("bogus"))
}
