package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/mparedes/cuestionario-api/internal/model"
	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the conditional-update semantics of
// the real repositories, including gorm.ErrRecordNotFound on misses, so the
// services under test see the same contract.

type fakeTokenRepo struct {
	mu        sync.Mutex
	tokens    map[string]*model.Token
	createErr error
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*model.Token)}
}

func (r *fakeTokenRepo) Create(token *model.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	copied := *token
	copied.CreatedAt = time.Now()
	r.tokens[token.ID] = &copied
	return nil
}

func (r *fakeTokenRepo) FindByID(id string) (*model.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *token
	return &copied, nil
}

func (r *fakeTokenRepo) FindAll(status string) ([]model.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Token
	for _, token := range r.tokens {
		if status == "" || token.Status == status {
			out = append(out, *token)
		}
	}
	return out, nil
}

func (r *fakeTokenRepo) MarkUsed(id string, usedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok || token.Status != model.TokenStatusActive {
		return false, nil
	}
	token.Status = model.TokenStatusUsed
	token.UsedAt = &usedAt
	return true, nil
}

func (r *fakeTokenRepo) Revoke(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok || token.Status != model.TokenStatusActive {
		return false, nil
	}
	token.Status = model.TokenStatusRevoked
	return true, nil
}

type fakeCuestionarioRepo struct {
	mu            sync.Mutex
	cuestionarios map[string]*model.Cuestionario
}

func newFakeCuestionarioRepo() *fakeCuestionarioRepo {
	return &fakeCuestionarioRepo{cuestionarios: make(map[string]*model.Cuestionario)}
}

func (r *fakeCuestionarioRepo) Create(cuestionario *model.Cuestionario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *cuestionario
	r.cuestionarios[cuestionario.ID] = &copied
	return nil
}

func (r *fakeCuestionarioRepo) FindByID(id string) (*model.Cuestionario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cuestionario, ok := r.cuestionarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *cuestionario
	return &copied, nil
}

func (r *fakeCuestionarioRepo) FindAll() ([]model.Cuestionario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Cuestionario
	for _, cuestionario := range r.cuestionarios {
		out = append(out, *cuestionario)
	}
	return out, nil
}

func (r *fakeCuestionarioRepo) FindActive() (*model.Cuestionario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cuestionario := range r.cuestionarios {
		if cuestionario.Status == model.CuestionarioStatusActive {
			copied := *cuestionario
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCuestionarioRepo) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cuestionario, ok := r.cuestionarios[id]
	if !ok {
		return nil
	}
	cuestionario.Status = status
	return nil
}

func (r *fakeCuestionarioRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cuestionarios, id)
	return nil
}

type fakeResponseRepo struct {
	mu        sync.Mutex
	responses map[string]*model.Response
	updates   map[string][]map[string]any
	createErr error
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{
		responses: make(map[string]*model.Response),
		updates:   make(map[string][]map[string]any),
	}
}

func (r *fakeResponseRepo) Create(response *model.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	copied := *response
	copied.CreatedAt = time.Now()
	r.responses[response.ID] = &copied
	return nil
}

func (r *fakeResponseRepo) FindByID(id string) (*model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	response, ok := r.responses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *response
	return &copied, nil
}

func (r *fakeResponseRepo) FindAll() ([]model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Response
	for _, response := range r.responses {
		out = append(out, *response)
	}
	return out, nil
}

func (r *fakeResponseRepo) FindByDownloadStatus(status string) ([]model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Response
	for _, response := range r.responses {
		if response.DownloadStatus == status {
			out = append(out, *response)
		}
	}
	return out, nil
}

func (r *fakeResponseRepo) FindByAdministrator(email string) ([]model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Response
	for _, response := range r.responses {
		if response.AdministeredByEmail != nil && *response.AdministeredByEmail == email {
			out = append(out, *response)
		}
	}
	return out, nil
}

func (r *fakeResponseRepo) UpdateFields(id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates[id] = append(r.updates[id], fields)
	response, ok := r.responses[id]
	if !ok {
		return nil
	}
	if status, ok := fields["download_status"].(string); ok {
		response.DownloadStatus = status
	}
	if status, ok := fields["status"].(string); ok {
		response.Status = status
	}
	return nil
}

func (r *fakeResponseRepo) lastUpdate(id string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	updates := r.updates[id]
	if len(updates) == 0 {
		return nil
	}
	return updates[len(updates)-1]
}

// testCuestionario builds a stored definition with sequential questions, each
// offering options A and B.
func testCuestionario(id string, numQuestions int) *model.Cuestionario {
	questions := make([]model.Question, 0, numQuestions)
	for i := 1; i <= numQuestions; i++ {
		questions = append(questions, model.Question{
			QuestionNumber: i,
			Text:           fmt.Sprintf("Pregunta %d", i),
			QuestionType:   model.QuestionTypeMultipleChoice,
			Options: []model.Option{
				{OptionKey: "A", OptionText: fmt.Sprintf("Opción A de %d", i), Score: 1},
				{OptionKey: "B", OptionText: fmt.Sprintf("Opción B de %d", i), Score: 2},
			},
		})
	}
	cuestionario := &model.Cuestionario{
		ID:             id,
		Version:        "1.0",
		Title:          "Cuestionario de prueba",
		TotalQuestions: numQuestions,
		Status:         model.CuestionarioStatusActive,
	}
	if err := cuestionario.SetQuestions(questions); err != nil {
		panic(err)
	}
	return cuestionario
}
