package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"trivia-quiz-service/internal/capture"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/quiz"
)

// maxPhotoBytes caps uploaded photo payloads.
const maxPhotoBytes = 10 << 20

// Handler maps the quiz UI actions 1:1 onto HTTP endpoints.
type Handler struct {
	service *quiz.QuizService
	camera  capture.Device // nil when no server-side camera is configured
}

func NewHandler(service *quiz.QuizService, camera capture.Device) *Handler {
	return &Handler{service: service, camera: camera}
}

// Register mounts every quiz route on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.startSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.getSession)
	mux.HandleFunc("GET /api/sessions/{id}/question", h.currentQuestion)
	mux.HandleFunc("POST /api/sessions/{id}/answer", h.selectAnswer)
	mux.HandleFunc("POST /api/sessions/{id}/submit", h.submitAnswer)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.abandonSession)
	mux.HandleFunc("POST /api/results/{id}/photo", h.attachPhoto)
	mux.HandleFunc("POST /api/results/{id}/capture", h.capturePhoto)
	mux.HandleFunc("GET /api/results", h.listResults)
	mux.HandleFunc("DELETE /api/results", h.clearResults)
}

type startSessionRequest struct {
	PlayerName string `json:"playerName"`
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	snapshot, err := h.service.StartSession(r.Context(), req.PlayerName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshot)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// questionView is the question as shown to the player: no correct index, no
// explanation. Those arrive with the reveal after submitting.
type questionView struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

func (h *Handler) currentQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.service.CurrentQuestion(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questionView{
		ID:      question.ID,
		Text:    question.Text,
		Options: question.Options,
	})
}

type selectAnswerRequest struct {
	Choice int `json:"choice"`
}

func (h *Handler) selectAnswer(w http.ResponseWriter, r *http.Request) {
	var req selectAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	snapshot, err := h.service.SelectAnswer(r.Context(), r.PathValue("id"), req.Choice)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

type revealResponse struct {
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correctIndex"`
	Explanation  string `json:"explanation,omitempty"`
	RevealMillis int64  `json:"revealMillis"`
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	reveal, err := h.service.SubmitAnswer(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, revealResponse{
		Correct:      reveal.Correct,
		CorrectIndex: reveal.CorrectIndex,
		Explanation:  reveal.Explanation,
		RevealMillis: reveal.Duration.Milliseconds(),
	})
}

func (h *Handler) abandonSession(w http.ResponseWriter, r *http.Request) {
	h.service.AbandonSession(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) attachPhoto(w http.ResponseWriter, r *http.Request) {
	resultID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid result id")
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPhotoBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read photo payload failed")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty photo payload")
		return
	}
	url, err := h.service.AttachPhoto(r.Context(), resultID, data)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"photoUrl": url})
}

// capturePhoto runs one capture flow against the configured camera: acquire,
// grab a still, attach it to the result, release. A camera failure leaves the
// result valid without a photo.
func (h *Handler) capturePhoto(w http.ResponseWriter, r *http.Request) {
	if h.camera == nil {
		writeError(w, http.StatusServiceUnavailable, "no camera configured")
		return
	}
	resultID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid result id")
		return
	}

	adapter := capture.NewAdapter(h.camera)
	if err := adapter.Acquire(r.Context(), capture.DefaultConstraints()); err != nil {
		writeCameraError(w, err)
		return
	}
	defer adapter.Release()

	still, err := adapter.CaptureStill()
	if err != nil {
		writeCameraError(w, err)
		return
	}
	url, err := h.service.AttachPhoto(r.Context(), resultID, still)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"photoUrl": url})
}

func writeCameraError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	code := "camera"
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		status = http.StatusForbidden
		code = "permission_denied"
	case errors.Is(err, domain.ErrDeviceUnavailable):
		status = http.StatusServiceUnavailable
		code = "device_unavailable"
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

type leaderboardResponse struct {
	Results []domain.Result         `json:"results"`
	Stats   domain.LeaderboardStats `json:"stats"`
}

func (h *Handler) listResults(w http.ResponseWriter, r *http.Request) {
	results, stats, err := h.service.Leaderboard(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if results == nil {
		results = []domain.Result{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Results: results, Stats: stats})
}

// clearResults is destructive and irreversible, so the caller must say so
// explicitly: DELETE /api/results?confirm=true.
func (h *Handler) clearResults(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "pass confirm=true to clear all results")
		return
	}
	if err := h.service.ClearResults(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := ""
	switch {
	case errors.Is(err, domain.ErrEmptyPlayerName),
		errors.Is(err, domain.ErrNoAnswerSelected),
		errors.Is(err, domain.ErrInvalidChoice):
		status = http.StatusUnprocessableEntity
		code = "validation"
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSessionCompleted),
		errors.Is(err, domain.ErrNotInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNoQuestions),
		errors.Is(err, domain.ErrQuestionsNotFound):
		status = http.StatusServiceUnavailable
		code = "configuration"
	case errors.Is(err, domain.ErrUploadFailed):
		status = http.StatusBadGateway
		code = "upload_failed"
	case errors.Is(err, domain.ErrLinkFailed):
		status = http.StatusBadGateway
		code = "link_failed"
	case errors.Is(err, domain.ErrSubmissionFailed):
		status = http.StatusBadGateway
		code = "submission_failed"
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}
