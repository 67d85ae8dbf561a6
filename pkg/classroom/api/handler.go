package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/tendant/simple-classroom/pkg/classroom"
)

// UploadField is the multipart field attachment files are sent in.
const UploadField = "files"

// defaultMultipartMemory is held in memory per upload request; larger parts
// spill to temporary files.
const defaultMultipartMemory = 32 << 20

// Handler exposes classroom.Service over HTTP.
type Handler struct {
	service classroom.Service
	auth    *jwtauth.JWTAuth
	log     *zap.Logger
}

func NewHandler(service classroom.Service, auth *jwtauth.JWTAuth, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, auth: auth, log: log}
}

// Routes returns the router for all classroom endpoints. Reads are public;
// commenting needs a principal; lesson and attachment writes need an admin.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(h.auth))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/lessons", func(r chi.Router) {
		r.Get("/", h.ListLessons)
		r.With(RequireAdmin).Post("/", h.CreateLesson)

		r.Route("/{lessonID}", func(r chi.Router) {
			r.Get("/", h.GetLesson)
			r.With(RequireAdmin).Delete("/", h.DeleteLesson)

			r.Get("/comments", h.ListComments)
			r.With(RequirePrincipal).Post("/comments", h.AppendComment)

			r.Get("/attachments", h.ListAttachments)
			r.With(RequireAdmin).Post("/attachments", h.UploadAttachments)
		})
	})
	r.Get("/attachments/{attachmentID}/url", h.AttachmentURL)
	return r
}

// CreateLessonRequest is the body of POST /lessons
type CreateLessonRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	VideoURL          string `json:"video_url"`
	ThumbnailURL      string `json:"thumbnail_url,omitempty"`
	AuthorDisplayName string `json:"author_display_name,omitempty"`
}

// AppendCommentRequest is the body of POST /lessons/{lessonID}/comments
type AppendCommentRequest struct {
	Content string `json:"content"`
}

// AttachmentURLResponse is the body of GET /attachments/{attachmentID}/url
type AttachmentURLResponse struct {
	URL string `json:"url"`
}

func (h *Handler) ListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.ListLessons(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if lessons == nil {
		lessons = []*classroom.Lesson{}
	}
	render.JSON(w, r, lessons)
}

func (h *Handler) GetLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.service.GetLesson(r.Context(), chi.URLParam(r, "lessonID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, lesson)
}

func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, &classroom.ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	lesson, err := h.service.CreateLesson(r.Context(), classroom.CreateLessonRequest{
		Title:             req.Title,
		Description:       req.Description,
		VideoURL:          req.VideoURL,
		ThumbnailURL:      req.ThumbnailURL,
		AuthorDisplayName: req.AuthorDisplayName,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, lesson)
}

func (h *Handler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLesson(r.Context(), chi.URLParam(r, "lessonID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.ListComments(r.Context(), chi.URLParam(r, "lessonID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if comments == nil {
		comments = []*classroom.Comment{}
	}
	render.JSON(w, r, comments)
}

func (h *Handler) AppendComment(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req AppendCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, &classroom.ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	comment, err := h.service.AppendComment(r.Context(), chi.URLParam(r, "lessonID"), principal, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, comment)
}

func (h *Handler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	attachments, err := h.service.ListAttachments(r.Context(), chi.URLParam(r, "lessonID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if attachments == nil {
		attachments = []*classroom.Attachment{}
	}
	render.JSON(w, r, attachments)
}

// UploadAttachments accepts a multipart batch. The response is 200 with one
// outcome per file even when some files failed.
func (h *Handler) UploadAttachments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(defaultMultipartMemory); err != nil {
		h.writeError(w, r, &classroom.ValidationError{Field: UploadField, Reason: err.Error()})
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[UploadField]
	files := make([]classroom.UploadFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("read %s: %w", fh.Filename, err))
			return
		}
		files = append(files, classroom.UploadFile{Name: fh.Filename, Data: data, Size: fh.Size})
	}

	lessonID := chi.URLParam(r, "lessonID")
	outcome, err := h.service.UploadAttachments(r.Context(), lessonID, files)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if failed := len(outcome.Failures()); failed > 0 {
		h.log.Warn("upload batch partially failed",
			zap.String("lesson_id", lessonID),
			zap.Int("files", len(files)),
			zap.Int("failed", failed))
	}
	render.JSON(w, r, outcome)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) AttachmentURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.AttachmentURL(r.Context(), chi.URLParam(r, "attachmentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, AttachmentURLResponse{URL: url})
}
