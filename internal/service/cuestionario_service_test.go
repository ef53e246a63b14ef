package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mparedes/cuestionario-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validUpload = `{
	"id_cuestionario": "clima-laboral-2026",
	"version": "2.1",
	"title": "Encuesta de clima laboral",
	"total_questions": 2,
	"questions": [
		{
			"question_number": 1,
			"text": "Primera pregunta",
			"question_type": "multiple_choice",
			"options": [
				{"option_key": "A", "option_text": "Sí", "score": 1},
				{"option_key": "B", "option_text": "No", "score": 0}
			]
		},
		{
			"question_number": 2,
			"text": "Segunda pregunta",
			"question_type": "forced_choice",
			"options": [
				{"option_key": "A", "option_text": "De acuerdo", "score": 2},
				{"option_key": "B", "option_text": "En desacuerdo", "score": 1}
			]
		}
	]
}`

func TestCuestionarioCreate(t *testing.T) {
	repo := newFakeCuestionarioRepo()
	svc := NewCuestionarioService(repo)

	created, err := svc.Create(context.Background(), []byte(validUpload))
	require.NoError(t, err)
	assert.Equal(t, "clima-laboral-2026", created.ID)
	assert.Equal(t, "2.1", created.Version)
	assert.Equal(t, model.CuestionarioStatusDraft, created.Status, "status defaults to draft")
	require.Len(t, created.Questions, 2)
	assert.Equal(t, "Primera pregunta", created.Questions[0].Text)

	stored, err := repo.FindByID("clima-laboral-2026")
	require.NoError(t, err)
	assert.Len(t, stored.Questions(), 2)
}

func TestCuestionarioCreateRejectsInvalidDocument(t *testing.T) {
	repo := newFakeCuestionarioRepo()
	svc := NewCuestionarioService(repo)

	_, err := svc.Create(context.Background(), []byte(`{"title": "sin preguntas"}`))
	require.Error(t, err)

	var invalid *InvalidCuestionarioError
	require.True(t, errors.As(err, &invalid))
	assert.NotEmpty(t, invalid.Errors)
	assert.Empty(t, repo.cuestionarios, "invalid documents are never stored")
}

func TestCuestionarioGetActive(t *testing.T) {
	repo := newFakeCuestionarioRepo()
	svc := NewCuestionarioService(repo)

	_, err := svc.GetActive(context.Background())
	assert.ErrorIs(t, err, ErrCuestionarioNotFound)

	_ = repo.Create(testCuestionario("activo", 5))
	active, err := svc.GetActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "activo", active.ID)
	assert.Len(t, active.Questions, 5)
}

func TestCuestionarioUpdateStatusArchivesPreviousActive(t *testing.T) {
	repo := newFakeCuestionarioRepo()
	svc := NewCuestionarioService(repo)

	previous := testCuestionario("anterior", 3)
	_ = repo.Create(previous)

	next := testCuestionario("siguiente", 3)
	next.Status = model.CuestionarioStatusDraft
	_ = repo.Create(next)

	require.NoError(t, svc.UpdateStatus(context.Background(), "siguiente", model.CuestionarioStatusActive))

	archived, _ := repo.FindByID("anterior")
	assert.Equal(t, model.CuestionarioStatusArchived, archived.Status)
	activated, _ := repo.FindByID("siguiente")
	assert.Equal(t, model.CuestionarioStatusActive, activated.Status)
}

func TestCuestionarioUpdateStatusReactivatingCurrentIsStable(t *testing.T) {
	repo := newFakeCuestionarioRepo()
	svc := NewCuestionarioService(repo)
	_ = repo.Create(testCuestionario("activo", 3))

	require.NoError(t, svc.UpdateStatus(context.Background(), "activo", model.CuestionarioStatusActive))
	current, _ := repo.FindByID("activo")
	assert.Equal(t, model.CuestionarioStatusActive, current.Status)
}

func TestCuestionarioUpdateStatusMissing(t *testing.T) {
	svc := NewCuestionarioService(newFakeCuestionarioRepo())
	err := svc.UpdateStatus(context.Background(), "ghost", model.CuestionarioStatusArchived)
	assert.ErrorIs(t, err, ErrCuestionarioNotFound)
}

func TestCuestionarioDelete(t *testing.T) {
	repo := newFakeCuestionarioRepo()
	svc := NewCuestionarioService(repo)
	_ = repo.Create(testCuestionario("borrar", 2))

	require.NoError(t, svc.Delete(context.Background(), "borrar"))
	_, err := svc.Get(context.Background(), "borrar")
	assert.ErrorIs(t, err, ErrCuestionarioNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), "ghost"), ErrCuestionarioNotFound)
}

func TestCuestionarioList(t *testing.T) {
	repo := newFakeCuestionarioRepo()
	svc := NewCuestionarioService(repo)
	_ = repo.Create(testCuestionario("uno", 2))
	_ = repo.Create(testCuestionario("dos", 3))

	summaries, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}
