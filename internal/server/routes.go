package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lazypower/bananimon/internal/avatar"
	"github.com/lazypower/bananimon/internal/game"
	"github.com/lazypower/bananimon/internal/store"
)

// maxBodyBytes bounds request bodies; selfies arrive as data URLs.
const maxBodyBytes = 16 << 20

// companionView mirrors the companions table, so its keys are the
// snake_case column names the web client reads.
type companionView struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Name               string    `json:"name"`
	AnimalType         string    `json:"animal_type"`
	Temperament        string    `json:"temperament"`
	EvolutionStage     int       `json:"evolution_stage"`
	Hunger             int       `json:"hunger"`
	Rest               int       `json:"rest"`
	Cleanliness        int       `json:"cleanliness"`
	Mood               int       `json:"mood"`
	Bond               float64   `json:"bond"`
	Focus              int       `json:"focus"`
	CareStreak         int       `json:"care_streak"`
	LastCareAt         time.Time `json:"last_care_at"`
	RestWindowUTC      int       `json:"rest_window_utc"`
	ConsistencyTokens  int       `json:"consistency_tokens"`
	ImageURLs          []string  `json:"image_urls"`
	SelectedImageIndex int       `json:"selected_image_index"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func viewCompanion(c *store.Companion) companionView {
	images := c.ImageURLs
	if images == nil {
		images = []string{}
	}
	return companionView{
		ID:                 c.ID,
		UserID:             c.UserID,
		Name:               c.Name,
		AnimalType:         c.AnimalType,
		Temperament:        c.Temperament,
		EvolutionStage:     c.EvolutionStage,
		Hunger:             c.Hunger,
		Rest:               c.Rest,
		Cleanliness:        c.Cleanliness,
		Mood:               c.Mood,
		Bond:               c.Bond,
		Focus:              c.Focus,
		CareStreak:         c.CareStreak,
		LastCareAt:         c.LastCareAt,
		RestWindowUTC:      c.RestWindowUTC,
		ConsistencyTokens:  c.ConsistencyTokens,
		ImageURLs:          images,
		SelectedImageIndex: c.SelectedImageIndex,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

type activityView struct {
	ID               int64     `json:"id"`
	ActivityType     string    `json:"activityType"`
	PerformanceScore float64   `json:"performanceScore"`
	BondGained       float64   `json:"bondGained"`
	CreatedAt        time.Time `json:"createdAt"`
}

// decode reads a JSON body into v and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		default:
			msgs = append(msgs, fmt.Sprintf("%s fails %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}

// fail maps a game error onto a status code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, "bananimon not found")
	case errors.Is(err, game.ErrInvalidActionKind),
		errors.Is(err, game.ErrInvalidPerformance),
		errors.Is(err, game.ErrInvalidRestHour),
		errors.Is(err, game.ErrEmailRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrConflict):
		writeError(w, http.StatusConflict, "bananimon changed concurrently, retry")
	default:
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleStages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"stages": game.Stages()})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"omitempty,email"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	u, err := s.engine.CreateUser(r.Context(), req.Email)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	token, err := s.sessions.SetCookie(w, u.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId": u.ID,
		"token":  token,
	})
}

func (s *Server) handleLinkEmail(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	u, err := s.engine.LinkEmail(r.Context(), userID, req.Email)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":      u.ID,
		"email":       *u.Email,
		"isAnonymous": u.IsAnonymous,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserImage      string `json:"userImage" validate:"required"`
		SelectedAnimal struct {
			Name string `json:"name"`
		} `json:"selectedAnimal"`
		SelectedAge json.RawMessage `json:"selectedAge"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	age, err := ageText(req.SelectedAge)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.avatars == nil {
		writeError(w, http.StatusServiceUnavailable, "avatar generation not configured")
		return
	}

	res, err := s.avatars.Generate(r.Context(), avatar.Request{
		UserImage: req.UserImage,
		Animal:    req.SelectedAnimal.Name,
		Age:       age,
	})
	switch {
	case err == nil:
	case errors.Is(err, avatar.ErrBadInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, avatar.ErrNoImages):
		writeError(w, http.StatusBadGateway, "no images were generated")
		return
	case errors.Is(err, avatar.ErrReference):
		s.log.Warn("animal reference unavailable", "animal", req.SelectedAnimal.Name, "error", err)
		writeError(w, http.StatusBadGateway, "animal reference unavailable")
		return
	default:
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"generatedImages": res.Images,
		"prompt":          res.Prompt,
		"totalGenerated":  res.Total,
	})
}

// ageText accepts selectedAge as a number of years or as free text.
func ageText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("selectedAge: %w", err)
	}
	switch age := v.(type) {
	case string:
		return age, nil
	case float64:
		if age <= 0 {
			return "", nil
		}
		return fmt.Sprintf("%s years old", strconv.FormatFloat(age, 'f', -1, 64)), nil
	default:
		return "", errors.New("selectedAge must be a number or a string")
	}
}

func (s *Server) handleCreateBananimon(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req struct {
		Name               string   `json:"name" validate:"required,max=40"`
		AnimalType         string   `json:"animalType" validate:"required"`
		Temperament        string   `json:"temperament"`
		ImageURLs          []string `json:"imageUrls" validate:"max=4"`
		SelectedImageIndex int      `json:"selectedImageIndex" validate:"gte=0"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	c, err := s.engine.CreateCompanion(r.Context(), userID, game.CreateParams{
		Name:               strings.TrimSpace(req.Name),
		AnimalType:         req.AnimalType,
		Temperament:        req.Temperament,
		ImageURLs:          req.ImageURLs,
		SelectedImageIndex: req.SelectedImageIndex,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"bananimon": viewCompanion(c)})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	view, err := s.engine.Home(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bananimon":       viewCompanion(view.Companion),
		"stageInfo":       view.Stage,
		"evolved":         view.Evolved,
		"dailyQuests":     view.DailyQuests,
		"careNeededToday": view.CareNeededToday,
	})
}

func (s *Server) handleCare(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	kind, err := game.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		BananimonID string   `json:"bananimonId" validate:"required"`
		Performance *float64 `json:"performance" validate:"required,gte=0,lte=1"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.engine.Care(r.Context(), userID, req.BananimonID, kind, *req.Performance)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bananimon":  viewCompanion(res.Companion),
		"evolved":    res.Evolved,
		"newStage":   int(res.NewStage),
		"stageInfo":  res.Stage,
		"bondGained": res.BondGained,
		"message":    res.Message,
	})
}

func (s *Server) handleRestSchedule(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req struct {
		BananimonID string `json:"bananimonId" validate:"required"`
		RestHour    *int   `json:"restHour" validate:"required,gte=0,lte=23"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	c, err := s.engine.SetRestWindow(r.Context(), userID, req.BananimonID, *req.RestHour)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"bananimon": viewCompanion(c),
	})
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	acts, err := s.engine.Activities(r.Context(), userID, chi.URLParam(r, "id"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]activityView, 0, len(acts))
	for _, a := range acts {
		out = append(out, activityView{
			ID:               a.ID,
			ActivityType:     a.ActivityType,
			PerformanceScore: a.PerformanceScore,
			BondGained:       a.BondGained,
			CreatedAt:        a.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": out})
}
