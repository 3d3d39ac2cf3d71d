package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"articles_api/internal/db"
	"articles_api/internal/logger"
	"articles_api/internal/metrics"
	"articles_api/internal/middleware"
	"articles_api/internal/models"
	"articles_api/internal/sanitizer"
	"articles_api/internal/validator"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

const (
	msgNotFound        = "Article doesn't exist"
	msgNoFields        = "Please input at least one field for updating"
	msgInvalidBody     = "Invalid request body"
	msgInternalError   = "Internal server error"
	missingFieldTmpl   = "Missing %s in request body"
	articleLocationFmt = "/articles/%d"
)

// ArticleStore — хранилище статей. Реализуется *db.Database.
type ArticleStore interface {
	ListArticles(ctx context.Context) ([]models.Article, error)
	GetArticle(ctx context.Context, id int) (models.Article, error)
	InsertArticle(ctx context.Context, a models.Article) (models.Article, error)
	DeleteArticle(ctx context.Context, id int) error
	UpdateArticle(ctx context.Context, id int, patch models.Patch) error
	Ping(ctx context.Context) error
}

// Server хранит зависимости HTTP-обработчиков: хранилище, валидатор и санитайзер.
type Server struct {
	store     ArticleStore
	validator *validator.Validator
	sanitizer *sanitizer.Sanitizer
}

// NewServer создаёт новый экземпляр Server поверх переданного хранилища.
func NewServer(store ArticleStore) *Server {
	return &Server{
		store:     store,
		validator: validator.New(),
		sanitizer: sanitizer.New(),
	}
}

// Routes регистрирует все маршруты сервиса.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /articles", s.ListArticles)
	mux.HandleFunc("POST /articles", s.CreateArticle)
	mux.HandleFunc("GET /articles/{id}", s.GetArticle)
	mux.HandleFunc("DELETE /articles/{id}", s.DeleteArticle)
	mux.HandleFunc("PATCH /articles/{id}", s.UpdateArticle)
	mux.HandleFunc("GET /health", s.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

type errorBody struct {
	Error errorMessage `json:"error"`
}

type errorMessage struct {
	Message string `json:"message"`
}

// HealthCheck отвечает 200, если база доступна, иначе 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		logger.Log.WithError(err).Warn("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ListArticles возвращает JSON-массив всех статей (пустой массив, если статей нет).
func (s *Server) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.ListArticles(r.Context())
	if err != nil {
		s.internalError(w, r, "list", 0, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sanitizer.Articles(articles))
}

// GetArticle возвращает одну статью по id из пути.
func (s *Server) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	article, err := s.store.GetArticle(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, "get", id, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sanitizer.Article(article))
}

// CreateArticle проверяет тело, сохраняет статью и отвечает 201 с заголовком Location.
func (s *Server) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var draft models.Draft
	if err := decodeBody(w, r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := s.validator.ValidateCreate(draft); err != nil {
		var mf *validator.MissingFieldError
		if errors.As(err, &mf) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf(missingFieldTmpl, mf.Field))
			return
		}
		s.internalError(w, r, "validate", 0, err)
		return
	}

	article, err := s.store.InsertArticle(r.Context(), models.Article{
		Title:   s.sanitizer.SanitizeTitle(*draft.Title),
		Style:   *draft.Style,
		Content: s.sanitizer.SanitizeContent(*draft.Content),
	})
	if err != nil {
		s.internalError(w, r, "insert", 0, err)
		return
	}

	logger.Log.WithField("article_id", article.ID).Debug("Article created")
	w.Header().Set("Location", fmt.Sprintf(articleLocationFmt, article.ID))
	writeJSON(w, http.StatusCreated, s.sanitizer.Article(article))
}

// DeleteArticle удаляет статью и отвечает 204 без тела.
func (s *Server) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	err := s.store.DeleteArticle(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, "delete", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateArticle частично обновляет статью и отвечает 204 без тела.
// Проверка тела выполняется до обращения к хранилищу.
func (s *Server) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var patch models.Patch
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if err := s.validator.ValidateUpdate(patch); err != nil {
		writeError(w, http.StatusBadRequest, msgNoFields)
		return
	}

	id, ok := articleID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	if patch.Title != nil {
		title := s.sanitizer.SanitizeTitle(*patch.Title)
		patch.Title = &title
	}
	if patch.Content != nil {
		content := s.sanitizer.SanitizeContent(*patch.Content)
		patch.Content = &content
	}

	err := s.store.UpdateArticle(r.Context(), id, patch)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, "update", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// articleID разбирает {id}; нечисловой id трактуется как отсутствующая статья.
func articleID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

// decodeBody читает JSON-объект из тела. Пустое тело равносильно {}.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, id int, err error) {
	metrics.RecordStoreError(op)
	logger.Log.WithError(err).WithFields(logrus.Fields{
		"operation":  op,
		"article_id": id,
		"request_id": middleware.RequestIDFromContext(r.Context()),
	}).Error("Article request failed")
	writeError(w, http.StatusInternalServerError, msgInternalError)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: errorMessage{Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}
