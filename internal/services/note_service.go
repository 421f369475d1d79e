package services

import (
	"context"
	"io"
	"strings"

	"notesapp/internal/models"
	"notesapp/internal/pdf"
	"notesapp/internal/repositories"
)

// NoteService works only with notes of the given owner; a foreign note
// looks exactly like a missing one.
type NoteService interface {
	Create(ctx context.Context, userID, name string) (*models.Note, error)
	List(ctx context.Context, userID string) ([]models.Note, error)
	Get(ctx context.Context, userID, noteID string) (*models.Note, error)
	Update(ctx context.Context, userID, noteID, content string) (*models.Note, error)
	Delete(ctx context.Context, userID, noteID string) error
	Export(ctx context.Context, userID, noteID string, w io.Writer) (*models.Note, error)
}

type noteService struct {
	repo     repositories.NoteRepository
	renderer pdf.Renderer
}

func NewNoteService(repo repositories.NoteRepository, renderer pdf.Renderer) NoteService {
	return &noteService{repo: repo, renderer: renderer}
}

func (s *noteService) Create(ctx context.Context, userID, name string) (*models.Note, error) {
	name = strings.TrimSpace(name)
	if err := validate(models.CreateNoteRequest{Name: name}); err != nil {
		return nil, err
	}
	note := &models.Note{UserID: userID, Name: name, Content: ""}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, storeErr("create note", err)
	}
	return note, nil
}

func (s *noteService) List(ctx context.Context, userID string) ([]models.Note, error) {
	notes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list notes", err)
	}
	return notes, nil
}

func (s *noteService) Get(ctx context.Context, userID, noteID string) (*models.Note, error) {
	note, err := s.repo.Get(ctx, noteID, userID)
	if err != nil {
		return nil, storeErr("get note", err)
	}
	return note, nil
}

func (s *noteService) Update(ctx context.Context, userID, noteID, content string) (*models.Note, error) {
	note, err := s.repo.UpdateContent(ctx, noteID, userID, content)
	if err != nil {
		return nil, storeErr("update note", err)
	}
	return note, nil
}

func (s *noteService) Delete(ctx context.Context, userID, noteID string) error {
	return storeErr("delete note", s.repo.Delete(ctx, noteID, userID))
}

// Export writes the note as PDF into w.
func (s *noteService) Export(ctx context.Context, userID, noteID string, w io.Writer) (*models.Note, error) {
	note, err := s.Get(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	err = s.renderer.RenderNote(w, pdf.NoteData{
		Name:      note.Name,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}
