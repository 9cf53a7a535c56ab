package repository

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/viva-go-api/internal/models"
)

func TestSessionRepositoryRoundTrip(t *testing.T) {
	repo := NewSessionRepository()

	repo.Put(models.CodeSubmission{
		InterviewID: "int-1",
		Name:        "Ada Lovelace",
		Language:    "go",
		Code:        "package main",
	})

	session, ok := repo.Get("int-1")
	require.True(t, ok)
	require.Equal(t, "Ada Lovelace", session.Name)
	require.Equal(t, "package main", session.Code)
}

func TestSessionRepositoryMiss(t *testing.T) {
	repo := NewSessionRepository()

	_, ok := repo.Get("missing")
	require.False(t, ok)
}

func TestSessionRepositoryIgnoresEmptyID(t *testing.T) {
	repo := NewSessionRepository()

	repo.Put(models.CodeSubmission{Name: "nobody"})

	_, ok := repo.Get("")
	require.False(t, ok)
}
